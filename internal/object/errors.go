package object

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ReentrancyError is returned when an object's computation is entered while
// it is already running.
type ReentrancyError struct {
	Object string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("object '%s' is already recomputing", e.Object)
}

// ReadOnlyError is returned when a read-only property is written outside its
// owner's computation.
type ReadOnlyError struct {
	Object   string
	Property string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("property '%s.%s' is read-only", e.Object, e.Property)
}

// KindError is returned when a setter does not match the property's kind.
type KindError struct {
	Object   string
	Property string
	Have     Kind
	Want     Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("property '%s.%s' is a %s property, not %s", e.Object, e.Property, e.Have, e.Want)
}

// TypeError is returned when a value cannot be converted to the declared type.
type TypeError struct {
	Object   string
	Property string
	Want     cty.Type
	Err      error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("property '%s.%s' requires %s: %v", e.Object, e.Property, e.Want.FriendlyName(), e.Err)
}

func (e *TypeError) Unwrap() error { return e.Err }
