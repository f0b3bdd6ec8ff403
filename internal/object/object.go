package object

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Spec describes an object to be created by a document.
type Spec struct {
	Type       string
	Name       string
	Label      string
	Decls      []Decl
	Behavior   Behavior
	Extensions []Extension
	// Bindings compute declared value properties from expressions.
	Bindings []Binding
}

// Object is a node of the document graph: a named computation over an
// ordered set of properties.
type Object struct {
	typeName string
	name     string
	label    string
	seq      int
	status   Status
	err      error

	props      []*Property
	byName     map[string]*Property
	behavior   Behavior
	extensions []Extension
	bindings   []Binding

	owner Owner
}

// New builds an object from spec. The document passes itself as owner and
// the creation sequence number that orders the object among its siblings.
func New(spec Spec, owner Owner, seq int) (*Object, error) {
	if spec.Name == "" {
		return nil, errors.New("object name cannot be empty")
	}
	o := &Object{
		typeName:   spec.Type,
		name:       spec.Name,
		label:      spec.Label,
		seq:        seq,
		status:     StatusNew | StatusTouched,
		byName:     make(map[string]*Property, len(spec.Decls)),
		behavior:   spec.Behavior,
		extensions: slices.Clone(spec.Extensions),
		owner:      owner,
	}
	if o.label == "" {
		o.label = spec.Name
	}
	for _, d := range spec.Decls {
		if _, err := o.addProperty(d, false); err != nil {
			return nil, err
		}
	}
	for _, b := range spec.Bindings {
		p := o.byName[b.Property()]
		if p == nil || p.kind != KindValue {
			return nil, fmt.Errorf("object '%s': binding for '%s' needs a declared value property", o.name, b.Property())
		}
		o.bindings = append(o.bindings, b)
	}
	return o, nil
}

// Name returns the object's document-unique, immutable name.
func (o *Object) Name() string { return o.name }

// Type returns the registered type name the object was created from.
func (o *Object) Type() string { return o.typeName }

// Label returns the user-facing label.
func (o *Object) Label() string { return o.label }

// SetLabel changes the user-facing label.
func (o *Object) SetLabel(label string) { o.label = label }

// Seq returns the creation sequence number.
func (o *Object) Seq() int { return o.seq }

// Owner returns the document the object belongs to, or nil once removed.
func (o *Object) Owner() Owner { return o.owner }

// Detach drops the owner back-reference. Documents call it when the object
// is removed; links to a detached object are dangling.
func (o *Object) Detach() { o.owner = nil }

// IsAttached reports whether the object is live in a document.
func (o *Object) IsAttached() bool {
	return o.owner != nil && !o.status.Has(StatusRemoving)
}

// Status returns the status bit-set.
func (o *Object) Status() Status { return o.status }

// TestStatus reports whether all of flags are set.
func (o *Object) TestStatus(flags Status) bool { return o.status.Has(flags) }

// SetStatus sets or clears flags without side effects.
func (o *Object) SetStatus(flags Status, on bool) {
	if on {
		o.status |= flags
	} else {
		o.status &^= flags
	}
}

// IsTouched reports whether the object needs to execute.
func (o *Object) IsTouched() bool { return o.status.Has(StatusTouched) }

// Touch marks the object touched and records it with the owner.
func (o *Object) Touch() {
	o.status |= StatusTouched
	if o.owner != nil {
		o.owner.ObjectTouched(o)
	}
}

// Purge clears the touched state of the object and of all its properties.
// It runs after a successful execution.
func (o *Object) Purge() {
	o.status &^= StatusTouched | StatusNew
	for _, p := range o.props {
		p.status &^= PropTouched
	}
}

// IsError reports whether the last execution failed.
func (o *Object) IsError() bool { return o.status.Has(StatusError) }

// Err returns the error of the last failed execution.
func (o *Object) Err() error { return o.err }

// SetError stores err and sets StatusError. A nil err clears both.
func (o *Object) SetError(err error) {
	if err == nil {
		o.ClearError()
		return
	}
	o.err = err
	o.status |= StatusError
}

// ClearError clears the error state.
func (o *Object) ClearError() {
	o.err = nil
	o.status &^= StatusError
}

// Property returns the property with the given name, or nil.
func (o *Object) Property(name string) *Property {
	return o.byName[name]
}

// Properties returns the properties in declaration order.
func (o *Object) Properties() []*Property {
	return slices.Clone(o.props)
}

// AddDynamicProperty adds a property at runtime.
func (o *Object) AddDynamicProperty(d Decl) (*Property, error) {
	return o.addProperty(d, true)
}

// RemoveDynamicProperty removes a property added with AddDynamicProperty.
// Declared properties cannot be removed.
func (o *Object) RemoveDynamicProperty(name string) error {
	p, ok := o.byName[name]
	if !ok {
		return fmt.Errorf("object '%s' has no property '%s'", o.name, name)
	}
	if !p.dynamic {
		return fmt.Errorf("property '%s.%s' is declared by type '%s' and cannot be removed", o.name, name, o.typeName)
	}
	delete(o.byName, name)
	o.props = slices.DeleteFunc(o.props, func(q *Property) bool { return q == p })
	o.RemoveBinding(name)
	if !o.status.Has(StatusNoTouch) {
		o.Touch()
	}
	return nil
}

func (o *Object) addProperty(d Decl, dynamic bool) (*Property, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("object '%s': property name cannot be empty", o.name)
	}
	if _, exists := o.byName[d.Name]; exists {
		return nil, fmt.Errorf("object '%s': property '%s' already exists", o.name, d.Name)
	}
	p, err := newProperty(o, d)
	if err != nil {
		return nil, fmt.Errorf("object '%s': %w", o.name, err)
	}
	p.dynamic = dynamic
	o.props = append(o.props, p)
	o.byName[d.Name] = p
	return p, nil
}

// Behavior returns the object's computation.
func (o *Object) Behavior() Behavior { return o.behavior }

// Extensions returns the attached extensions in attachment order.
func (o *Object) Extensions() []Extension { return slices.Clone(o.extensions) }

// Bindings returns the expression bindings attached to the object.
func (o *Object) Bindings() []Binding { return slices.Clone(o.bindings) }

// Binding returns the binding that computes the named property, if any.
func (o *Object) Binding(prop string) Binding {
	for _, b := range o.bindings {
		if b.Property() == prop {
			return b
		}
	}
	return nil
}

// SetBinding attaches b, replacing any binding for the same property, and
// touches the object.
func (o *Object) SetBinding(b Binding) error {
	p := o.byName[b.Property()]
	if p == nil {
		return fmt.Errorf("object '%s' has no property '%s' to bind", o.name, b.Property())
	}
	if p.kind != KindValue {
		return fmt.Errorf("property '%s.%s' is a %s property and cannot be bound to an expression", o.name, p.name, p.kind)
	}
	o.bindings = slices.DeleteFunc(o.bindings, func(x Binding) bool { return x.Property() == b.Property() })
	o.bindings = append(o.bindings, b)
	if !o.status.Has(StatusRestoring) {
		o.Touch()
	}
	return nil
}

// RemoveBinding detaches the binding for prop. It reports whether one existed.
func (o *Object) RemoveBinding(prop string) bool {
	n := len(o.bindings)
	o.bindings = slices.DeleteFunc(o.bindings, func(x Binding) bool { return x.Property() == prop })
	return len(o.bindings) != n
}

// MustExecute reports whether the object has to run in the next recompute:
// it is touched, or its behavior or any extension asks for it.
func (o *Object) MustExecute() bool {
	if o.status.Has(StatusTouched) {
		return true
	}
	if m, ok := o.behavior.(MustExecuter); ok && m.MustExecute(o) {
		return true
	}
	for _, ext := range o.extensions {
		if m, ok := ext.(MustExecuter); ok && m.MustExecute(o) {
			return true
		}
	}
	return false
}

// BeginRecompute marks the object as recomputing. It fails with a
// *ReentrancyError if the object is already recomputing; otherwise the
// returned release func clears the flag.
func (o *Object) BeginRecompute() (release func(), err error) {
	if o.status.Has(StatusRecomputing) {
		return nil, &ReentrancyError{Object: o.name}
	}
	o.status |= StatusRecomputing
	return func() { o.status &^= StatusRecomputing }, nil
}

// Execute runs the object's computation under the recompute guard:
// expression bindings first, then extension hooks, then the behavior.
func (o *Object) Execute(ctx context.Context) error {
	release, err := o.BeginRecompute()
	if err != nil {
		return err
	}
	defer release()

	for _, b := range o.bindings {
		if err := b.Evaluate(ctx, o); err != nil {
			return fmt.Errorf("expression for '%s': %w", b.Property(), err)
		}
	}
	for _, ext := range o.extensions {
		if x, ok := ext.(ExtensionExecutor); ok {
			if err := x.ExecuteExtension(ctx, o); err != nil {
				return fmt.Errorf("%s: %w", ext.ExtensionName(), err)
			}
		}
	}
	if o.behavior == nil {
		return nil
	}
	return o.behavior.Execute(ctx, o)
}

// Setup runs the setup hooks of the behavior and the extensions.
func (o *Object) Setup(ctx context.Context) error {
	if h, ok := o.behavior.(SetupHandler); ok {
		if err := h.OnSetup(ctx, o); err != nil {
			return err
		}
	}
	for _, ext := range o.extensions {
		if h, ok := ext.(SetupHandler); ok {
			if err := h.OnSetup(ctx, o); err != nil {
				return fmt.Errorf("%s: %w", ext.ExtensionName(), err)
			}
		}
	}
	return nil
}

// Unsetup runs the teardown hooks in reverse order of Setup. All hooks run;
// their errors are joined.
func (o *Object) Unsetup(ctx context.Context) error {
	var errs []error
	for i := len(o.extensions) - 1; i >= 0; i-- {
		if h, ok := o.extensions[i].(SetupHandler); ok {
			if err := h.OnUnsetup(ctx, o); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", o.extensions[i].ExtensionName(), err))
			}
		}
	}
	if h, ok := o.behavior.(SetupHandler); ok {
		if err := h.OnUnsetup(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// propertyChanged runs after any property setter. Output properties and
// objects flagged NoTouch, Recomputing or Restoring never become touched.
func (o *Object) propertyChanged(p *Property) {
	if o.status.Has(StatusRestoring) {
		return
	}
	if !p.IsOutput() && o.status&(StatusNoTouch|StatusRecomputing) == 0 {
		o.Touch()
	}
	if h, ok := o.behavior.(ChangeHandler); ok {
		h.OnChanged(o, p)
	}
	for _, ext := range o.extensions {
		if h, ok := ext.(ChangeHandler); ok {
			h.OnChanged(o, p)
		}
	}
	if o.owner != nil {
		o.owner.PropertyChanged(o, p)
	}
}

func (o *Object) String() string {
	return o.name
}
