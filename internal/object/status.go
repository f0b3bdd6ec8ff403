package object

import "strings"

// Status is the bit-set of lifecycle and recompute flags carried by an Object.
type Status uint16

const (
	// StatusTouched marks an object whose inputs changed since its last
	// successful execution.
	StatusTouched Status = 1 << iota
	// StatusError marks an object whose last execution failed.
	StatusError
	// StatusNew marks an object that has never executed.
	StatusNew
	// StatusRecomputing is set while the object's computation runs.
	StatusRecomputing
	// StatusRemoving is set while the object is being removed from its document.
	StatusRemoving
	// StatusPartial marks an object that could not be fully restored.
	StatusPartial
	// StatusNoTouch suppresses touching on property change.
	StatusNoTouch
	// StatusRestoring is set while the object's properties are being loaded.
	StatusRestoring
)

var statusNames = []struct {
	bit  Status
	name string
}{
	{StatusTouched, "touched"},
	{StatusError, "error"},
	{StatusNew, "new"},
	{StatusRecomputing, "recomputing"},
	{StatusRemoving, "removing"},
	{StatusPartial, "partial"},
	{StatusNoTouch, "notouch"},
	{StatusRestoring, "restoring"},
}

// Has reports whether every bit in flags is set.
func (s Status) Has(flags Status) bool {
	return s&flags == flags
}

// String renders the set bits as a pipe-separated list, e.g. "touched|new".
func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, n := range statusNames {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// PropStatus is the bit-set of flags carried by a Property.
type PropStatus uint8

const (
	// PropTouched is set when the property's value changed since the
	// owner last executed successfully.
	PropTouched PropStatus = 1 << iota
	// PropReadOnly properties can only be written by the owner's own computation.
	PropReadOnly
	// PropHidden properties are not shown to users.
	PropHidden
	// PropTransient properties are never persisted.
	PropTransient
	// PropOutput properties hold computation results; changing them never
	// touches the owner.
	PropOutput
)

// Has reports whether every bit in flags is set.
func (s PropStatus) Has(flags PropStatus) bool {
	return s&flags == flags
}
