package object

import "context"

// Behavior is the computation attached to an object type.
type Behavior interface {
	Execute(ctx context.Context, o *Object) error
}

// BehaviorFunc adapts a plain function to the Behavior interface.
type BehaviorFunc func(ctx context.Context, o *Object) error

// Execute calls f.
func (f BehaviorFunc) Execute(ctx context.Context, o *Object) error {
	return f(ctx, o)
}

// MustExecuter lets a behavior or extension force execution even when the
// object itself is not touched.
type MustExecuter interface {
	MustExecute(o *Object) bool
}

// ChangeHandler is notified after a property of the object changed.
type ChangeHandler interface {
	OnChanged(o *Object, p *Property)
}

// SetupHandler runs when the object joins or leaves its document. OnSetup
// may create helper objects; OnUnsetup removes them.
type SetupHandler interface {
	OnSetup(ctx context.Context, o *Object) error
	OnUnsetup(ctx context.Context, o *Object) error
}

// Extension is a composable capability record attached to an object. An
// extension may also implement MustExecuter, ChangeHandler, SetupHandler
// and ExtensionExecutor.
type Extension interface {
	ExtensionName() string
}

// ExtensionExecutor runs before the object's own behavior.
type ExtensionExecutor interface {
	ExecuteExtension(ctx context.Context, o *Object) error
}

// Binding computes one property of its object from other objects.
// Implementations report the names of the objects they read so link
// resolution can turn them into dependency edges.
type Binding interface {
	Property() string
	Dependencies() []string
	Evaluate(ctx context.Context, o *Object) error
}

// Owner is the document an object lives in.
type Owner interface {
	// Lookup returns the live object with the given name, or nil.
	Lookup(name string) *Object
	// ObjectTouched records that o became touched.
	ObjectTouched(o *Object)
	// PropertyChanged notifies observers that p changed.
	PropertyChanged(o *Object, p *Property)
}

// ExtensionOf returns the first extension of o with type T.
func ExtensionOf[T Extension](o *Object) (T, bool) {
	for _, ext := range o.extensions {
		if t, ok := ext.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
