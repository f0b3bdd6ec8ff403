// Package document owns a set of objects and is the boundary between the
// recompute core and its collaborators: it creates and removes objects,
// records which objects became touched, and fans events out to observers.
//
// A Document is not safe for concurrent mutation. Callers that share one
// across goroutines serialize access themselves; the only concurrency
// guarantee is that at most one recompute pass runs at a time.
package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/links"
	"github.com/specialistvlad/featuregraph/internal/object"
)

var (
	// ErrObjectNotFound is returned for operations on unknown object names.
	ErrObjectNotFound = errors.New("object not found")
	// ErrBusy is returned when an object is removed during a recompute pass.
	ErrBusy = errors.New("document is recomputing")
	// ErrNoRecomputer is returned by RecomputeObject before SetRecomputer.
	ErrNoRecomputer = errors.New("document has no recomputer")
)

// RecomputeResult summarizes one recompute pass for observers.
type RecomputeResult struct {
	Executed []string
	Failed   []string
	Skipped  []string
	Aborted  bool
	Duration time.Duration
}

// Recomputer recomputes a single object of a document on demand.
type Recomputer interface {
	RecomputeObject(ctx context.Context, d *Document, o *object.Object) error
}

type observerEntry struct {
	id  int
	obs Observer
}

// Document is an ordered collection of uniquely named objects.
type Document struct {
	name    string
	objects []*object.Object
	byName  map[string]*object.Object
	nextSeq int

	touchLog  []*object.Object
	observers []observerEntry
	nextObsID int

	restoring  bool
	inPass     atomic.Bool
	recomputer Recomputer
}

// New creates an empty document.
func New(name string) *Document {
	return &Document{
		name:   name,
		byName: make(map[string]*object.Object),
	}
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// AddObject creates an object from spec and runs its setup hooks. An empty
// or taken spec.Name is replaced by a unique name derived from it or from
// the type name.
func (d *Document) AddObject(ctx context.Context, spec object.Spec) (*object.Object, error) {
	logger := ctxlog.FromContext(ctx)

	base := spec.Name
	if base == "" {
		base = spec.Type
	}
	spec.Name = d.UniqueName(base)

	o, err := object.New(spec, d, d.nextSeq)
	if err != nil {
		return nil, err
	}
	d.nextSeq++
	if d.restoring {
		o.SetStatus(object.StatusRestoring, true)
	}
	d.objects = append(d.objects, o)
	d.byName[o.Name()] = o
	o.Touch()

	logger.Debug("Object added.", "object", o.Name(), "type", o.Type())
	for _, obs := range d.snapshotObservers() {
		obs.OnObjectCreated(o)
	}

	if err := o.Setup(ctx); err != nil {
		if rmErr := d.RemoveObject(ctx, o.Name()); rmErr != nil {
			logger.Error("Failed to remove object after setup failure.", "object", o.Name(), "error", rmErr)
		}
		return nil, fmt.Errorf("setting up object '%s': %w", o.Name(), err)
	}
	return o, nil
}

// RemoveObject marks the object as removing, notifies observers, runs its
// teardown hooks and drops it. Objects that linked to it are touched; their
// links become dangling and stop producing edges.
func (d *Document) RemoveObject(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	o := d.byName[name]
	if o == nil {
		return fmt.Errorf("removing '%s': %w", name, ErrObjectNotFound)
	}
	if o.TestStatus(object.StatusRemoving) {
		return nil
	}
	if d.inPass.Load() {
		return fmt.Errorf("removing '%s': %w", name, ErrBusy)
	}

	dependents := links.InList(d.objects, o)
	o.SetStatus(object.StatusRemoving, true)
	for _, obs := range d.snapshotObservers() {
		obs.OnObjectDeleted(o)
	}

	err := o.Unsetup(ctx)

	d.objects = slices.DeleteFunc(d.objects, func(x *object.Object) bool { return x == o })
	delete(d.byName, name)
	d.touchLog = slices.DeleteFunc(d.touchLog, func(x *object.Object) bool { return x == o })
	o.Detach()

	for _, dep := range dependents {
		if dep.IsAttached() {
			dep.Touch()
		}
	}
	logger.Debug("Object removed.", "object", name, "touched_dependents", len(dependents))

	if err != nil {
		return fmt.Errorf("tearing down object '%s': %w", name, err)
	}
	return nil
}

var trailingDigits = regexp.MustCompile(`\d+$`)

// UniqueName returns base if no object uses it, otherwise base with its
// trailing digits replaced by the first free three-digit suffix
// ("Box", "Box001", "Box002", ...). Characters that are not valid in an
// identifier are replaced by underscores.
func (d *Document) UniqueName(base string) string {
	base = sanitizeName(base)
	if _, taken := d.byName[base]; !taken {
		return base
	}
	stem := trailingDigits.ReplaceAllString(base, "")
	if stem == "" {
		stem = "Object"
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%03d", stem, i)
		if _, taken := d.byName[candidate]; !taken {
			return candidate
		}
	}
}

func sanitizeName(name string) string {
	if name == "" {
		return "Object"
	}
	if hclsyntax.ValidIdentifier(name) {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		valid := r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9'
		if valid {
			b.WriteRune(r)
			continue
		}
		if i == 0 && r >= '0' && r <= '9' {
			b.WriteRune('_')
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}

// Object returns the object with the given name, or nil.
func (d *Document) Object(name string) *object.Object {
	return d.byName[name]
}

// Objects returns all objects in creation order.
func (d *Document) Objects() []*object.Object {
	return slices.Clone(d.objects)
}

// Len returns the number of objects.
func (d *Document) Len() int { return len(d.objects) }

// IsTouched reports whether the named object needs to execute.
func (d *Document) IsTouched(name string) bool {
	o := d.byName[name]
	return o != nil && o.IsTouched()
}

// TouchedObjects returns the touched objects in creation order.
func (d *Document) TouchedObjects() []*object.Object {
	var out []*object.Object
	for _, o := range d.objects {
		if o.IsTouched() {
			out = append(out, o)
		}
	}
	return out
}

// HasErrors reports whether any object is in the error state.
func (d *Document) HasErrors() bool {
	return slices.ContainsFunc(d.objects, (*object.Object).IsError)
}

// ErrorObjects returns the objects in the error state, in creation order.
func (d *Document) ErrorObjects() []*object.Object {
	var out []*object.Object
	for _, o := range d.objects {
		if o.IsError() {
			out = append(out, o)
		}
	}
	return out
}

// Lookup implements object.Owner.
func (d *Document) Lookup(name string) *object.Object {
	o := d.byName[name]
	if o == nil || o.TestStatus(object.StatusRemoving) {
		return nil
	}
	return o
}

// ObjectTouched implements object.Owner.
func (d *Document) ObjectTouched(o *object.Object) {
	if d.restoring {
		return
	}
	d.touchLog = append(d.touchLog, o)
}

// PropertyChanged implements object.Owner.
func (d *Document) PropertyChanged(o *object.Object, p *object.Property) {
	for _, obs := range d.snapshotObservers() {
		obs.OnObjectChanged(o, p)
	}
}

// DrainTouched returns and clears the objects touched since the last drain,
// in the order they were touched, without duplicates.
func (d *Document) DrainTouched() []*object.Object {
	seen := make(map[*object.Object]struct{}, len(d.touchLog))
	var out []*object.Object
	for _, o := range d.touchLog {
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	d.touchLog = nil
	return out
}

// BeginRestore switches the document into loading mode: new objects are
// flagged restoring, and property changes neither touch nor notify.
func (d *Document) BeginRestore() {
	d.restoring = true
}

// EndRestore leaves loading mode. Every object stays touched so that the
// first recompute executes the whole document.
func (d *Document) EndRestore() {
	d.restoring = false
	for _, o := range d.objects {
		o.SetStatus(object.StatusRestoring, false)
		o.Touch()
	}
}

// IsRestoring reports whether the document is in loading mode.
func (d *Document) IsRestoring() bool { return d.restoring }

// TryBeginPass claims the document for a recompute pass. It returns false
// if a pass is already running; otherwise release ends the pass.
func (d *Document) TryBeginPass() (release func(), ok bool) {
	if !d.inPass.CompareAndSwap(false, true) {
		return nil, false
	}
	return func() { d.inPass.Store(false) }, true
}

// InPass reports whether a recompute pass is running.
func (d *Document) InPass() bool { return d.inPass.Load() }

// SetRecomputer installs the engine used by RecomputeObject.
func (d *Document) SetRecomputer(r Recomputer) { d.recomputer = r }

// RecomputeObject recomputes the named object through the installed
// recomputer.
func (d *Document) RecomputeObject(ctx context.Context, name string) error {
	if d.recomputer == nil {
		return ErrNoRecomputer
	}
	o := d.byName[name]
	if o == nil {
		return fmt.Errorf("recomputing '%s': %w", name, ErrObjectNotFound)
	}
	return d.recomputer.RecomputeObject(ctx, d, o)
}

// Observe registers obs and returns a func that unregisters it.
func (d *Document) Observe(obs Observer) (cancel func()) {
	id := d.nextObsID
	d.nextObsID++
	d.observers = append(d.observers, observerEntry{id: id, obs: obs})
	return func() {
		d.observers = slices.DeleteFunc(d.observers, func(e observerEntry) bool { return e.id == id })
	}
}

func (d *Document) snapshotObservers() []Observer {
	out := make([]Observer, len(d.observers))
	for i, e := range d.observers {
		out[i] = e.obs
	}
	return out
}

// NotifyRecomputed tells observers that o executed successfully.
func (d *Document) NotifyRecomputed(o *object.Object) {
	for _, obs := range d.snapshotObservers() {
		obs.OnObjectRecomputed(o)
	}
}

// NotifyError tells observers that o failed or was skipped.
func (d *Document) NotifyError(o *object.Object, err error) {
	for _, obs := range d.snapshotObservers() {
		obs.OnObjectError(o, err)
	}
}

// NotifyDocumentRecomputed tells observers that a pass finished.
func (d *Document) NotifyDocumentRecomputed(res RecomputeResult) {
	for _, obs := range d.snapshotObservers() {
		obs.OnDocumentRecomputed(d, res)
	}
}
