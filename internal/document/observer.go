package document

import "github.com/specialistvlad/featuregraph/internal/object"

// Observer receives document events. Embed BaseObserver to implement only
// the events you need.
type Observer interface {
	// OnObjectCreated runs after an object joined the document.
	OnObjectCreated(o *object.Object)
	// OnObjectDeleted runs when an object is about to be removed. Its links
	// are still intact.
	OnObjectDeleted(o *object.Object)
	// OnObjectChanged runs after a property of o changed.
	OnObjectChanged(o *object.Object, p *object.Property)
	// OnObjectRecomputed runs after o executed successfully.
	OnObjectRecomputed(o *object.Object)
	// OnObjectError runs after o failed or was skipped.
	OnObjectError(o *object.Object, err error)
	// OnDocumentRecomputed runs once at the end of every recompute pass.
	OnDocumentRecomputed(d *Document, res RecomputeResult)
}

// BaseObserver implements Observer with no-ops.
type BaseObserver struct{}

func (BaseObserver) OnObjectCreated(*object.Object) {}
func (BaseObserver) OnObjectDeleted(*object.Object) {}
func (BaseObserver) OnObjectChanged(*object.Object, *object.Property) {}
func (BaseObserver) OnObjectRecomputed(*object.Object) {}
func (BaseObserver) OnObjectError(*object.Object, error) {}
func (BaseObserver) OnDocumentRecomputed(*Document, RecomputeResult) {}

// ObjectObserver watches a subset of a document's objects. When the last
// watched object is deleted it calls the cancel callback once and stops
// observing.
type ObjectObserver struct {
	BaseObserver

	doc      *Document
	watched  map[*object.Object]struct{}
	onCancel func()
	detach   func()
}

// NewObjectObserver attaches a subset observer to d. onCancel may be nil.
func NewObjectObserver(d *Document, onCancel func()) *ObjectObserver {
	w := &ObjectObserver{
		doc:      d,
		watched:  make(map[*object.Object]struct{}),
		onCancel: onCancel,
	}
	w.detach = d.Observe(w)
	return w
}

// Add starts watching o. Objects from other documents are ignored.
func (w *ObjectObserver) Add(o *object.Object) bool {
	if w.detach == nil || o == nil || w.doc.Lookup(o.Name()) != o {
		return false
	}
	w.watched[o] = struct{}{}
	return true
}

// Remove stops watching o without triggering the cancel callback.
func (w *ObjectObserver) Remove(o *object.Object) {
	delete(w.watched, o)
}

// Has reports whether o is watched.
func (w *ObjectObserver) Has(o *object.Object) bool {
	_, ok := w.watched[o]
	return ok
}

// Objects returns the watched objects in creation order.
func (w *ObjectObserver) Objects() []*object.Object {
	var out []*object.Object
	for _, o := range w.doc.Objects() {
		if w.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of watched objects.
func (w *ObjectObserver) Len() int { return len(w.watched) }

// Close detaches the observer from its document.
func (w *ObjectObserver) Close() {
	if w.detach != nil {
		w.detach()
		w.detach = nil
	}
}

func (w *ObjectObserver) OnObjectDeleted(o *object.Object) {
	if !w.Has(o) {
		return
	}
	delete(w.watched, o)
	if len(w.watched) > 0 {
		return
	}
	w.Close()
	if w.onCancel != nil {
		w.onCancel()
	}
}
