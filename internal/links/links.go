// Package links resolves the link-family properties and expression bindings
// of an object into the set of objects it depends on.
package links

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/featuregraph/internal/object"
)

// SelfLinkError reports an object that references itself. The reference is
// left out of the resolved set; callers treat the object as a cycle of one.
type SelfLinkError struct {
	Object   string
	Property string
}

func (e *SelfLinkError) Error() string {
	return fmt.Sprintf("object '%s' links to itself through '%s'", e.Object, e.Property)
}

// OutList returns the objects o depends on, deduplicated and ordered by
// creation sequence. Null targets, removed objects and objects owned by a
// different document contribute nothing. A self-reference is excluded and
// reported as a *SelfLinkError alongside the otherwise complete result.
func OutList(o *object.Object) ([]*object.Object, error) {
	if o == nil {
		return nil, nil
	}
	seen := make(map[*object.Object]struct{})
	var out []*object.Object
	var selfErr error

	add := func(target *object.Object, via string) {
		if !Valid(o, target) {
			return
		}
		if target == o {
			if selfErr == nil {
				selfErr = &SelfLinkError{Object: o.Name(), Property: via}
			}
			return
		}
		if _, dup := seen[target]; dup {
			return
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}

	for _, p := range o.Properties() {
		if !p.Kind().IsLink() {
			continue
		}
		for _, target := range p.Targets() {
			add(target, p.Name())
		}
	}

	if owner := o.Owner(); owner != nil {
		for _, b := range o.Bindings() {
			for _, name := range b.Dependencies() {
				add(owner.Lookup(name), b.Property())
			}
		}
	}

	slices.SortFunc(out, func(a, b *object.Object) int { return a.Seq() - b.Seq() })
	return out, selfErr
}

// Valid reports whether target is a live object in the same document as from.
func Valid(from, target *object.Object) bool {
	if target == nil || !target.IsAttached() {
		return false
	}
	return from.Owner() != nil && target.Owner() == from.Owner()
}

// InList returns the members of objs that depend directly on target, in the
// order they appear in objs.
func InList(objs []*object.Object, target *object.Object) []*object.Object {
	var in []*object.Object
	for _, o := range objs {
		if o == target {
			continue
		}
		out, _ := OutList(o)
		if slices.Contains(out, target) {
			in = append(in, o)
		}
	}
	return in
}

// Relink rewrites every link of o through replace. It returns true if any
// link changed; the caller re-resolves the graph afterwards.
func Relink(o *object.Object, replace func(*object.Object) *object.Object) (bool, error) {
	changed := false
	for _, p := range o.Properties() {
		if !p.Kind().IsLink() {
			continue
		}
		links := p.Links()
		dirty := false
		for i, l := range links {
			if l.Target == nil {
				continue
			}
			if r := replace(l.Target); r != nil && r != l.Target {
				links[i].Target = r
				dirty = true
			}
		}
		if !dirty {
			continue
		}
		if err := p.SetReferences(links); err != nil {
			return changed, fmt.Errorf("relinking '%s.%s': %w", o.Name(), p.Name(), err)
		}
		changed = true
	}
	return changed, nil
}
