package object

import (
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Kind identifies the payload family of a Property.
type Kind int

const (
	// KindValue holds a plain cty value and never produces dependency edges.
	KindValue Kind = iota
	// KindLink references at most one object.
	KindLink
	// KindLinkList references an ordered list of objects.
	KindLinkList
	// KindLinkSub references one object plus named sub-elements of it.
	KindLinkSub
	// KindLinkSubList references several objects, each with sub-elements.
	KindLinkSubList
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindLink:
		return "link"
	case KindLinkList:
		return "link_list"
	case KindLinkSub:
		return "link_sub"
	case KindLinkSubList:
		return "link_sub_list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsLink reports whether properties of this kind reference other objects.
func (k Kind) IsLink() bool {
	return k != KindValue
}

// Link is a single reference held by a link-family property. Subs names
// sub-elements of the target (faces, edges) and is empty for plain links.
type Link struct {
	Target *Object
	Subs   []string
}

// Decl declares a property on an object type.
type Decl struct {
	Name    string
	Kind    Kind
	Type    cty.Type // value kind only; cty.NilType means cty.DynamicPseudoType
	Default cty.Value
	Status  PropStatus
	Doc     string
}

// Property is a named, typed attribute owned by exactly one Object.
type Property struct {
	name    string
	kind    Kind
	typ     cty.Type
	status  PropStatus
	doc     string
	dynamic bool
	owner   *Object

	value cty.Value
	links []Link
}

func newProperty(owner *Object, d Decl) (*Property, error) {
	p := &Property{
		name:   d.Name,
		kind:   d.Kind,
		status: d.Status &^ PropTouched,
		doc:    d.Doc,
		owner:  owner,
	}
	if d.Kind != KindValue {
		return p, nil
	}
	p.typ = d.Type
	if p.typ == cty.NilType {
		p.typ = cty.DynamicPseudoType
	}
	p.value = cty.NullVal(p.typ)
	if d.Default != cty.NilVal && !d.Default.IsNull() {
		v, err := convert.Convert(d.Default, p.typ)
		if err != nil {
			return nil, fmt.Errorf("default for property '%s': %w", d.Name, err)
		}
		p.value = v
	}
	return p, nil
}

// Name returns the property name, unique within its owner.
func (p *Property) Name() string { return p.name }

// Kind returns the property's payload family.
func (p *Property) Kind() Kind { return p.kind }

// Type returns the declared cty type of a value property.
func (p *Property) Type() cty.Type { return p.typ }

// Doc returns the property's documentation string.
func (p *Property) Doc() string { return p.doc }

// Owner returns the object that owns the property.
func (p *Property) Owner() *Object { return p.owner }

// Dynamic reports whether the property was added at runtime.
func (p *Property) Dynamic() bool { return p.dynamic }

// Status returns the property's flag bit-set.
func (p *Property) Status() PropStatus { return p.status }

// TestStatus reports whether all of flags are set.
func (p *Property) TestStatus(flags PropStatus) bool { return p.status.Has(flags) }

// SetStatus sets or clears flags. It never notifies the owner.
func (p *Property) SetStatus(flags PropStatus, on bool) {
	if on {
		p.status |= flags
	} else {
		p.status &^= flags
	}
}

// IsTouched reports whether the property changed since the owner's last
// successful execution.
func (p *Property) IsTouched() bool { return p.status.Has(PropTouched) }

// IsOutput reports whether the property holds a computation result.
func (p *Property) IsOutput() bool { return p.status.Has(PropOutput) }

// Value returns the payload of a value property, or a null value for links.
func (p *Property) Value() cty.Value {
	if p.kind != KindValue {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return p.value
}

// Links returns a copy of the references held by a link-family property.
func (p *Property) Links() []Link {
	out := make([]Link, len(p.links))
	for i, l := range p.links {
		out[i] = Link{Target: l.Target, Subs: slices.Clone(l.Subs)}
	}
	return out
}

// Targets returns the referenced objects in property order, nil entries included.
func (p *Property) Targets() []*Object {
	out := make([]*Object, len(p.links))
	for i, l := range p.links {
		out[i] = l.Target
	}
	return out
}

// Target returns the referenced object of a Link or LinkSub property.
func (p *Property) Target() *Object {
	if len(p.links) == 0 {
		return nil
	}
	return p.links[0].Target
}

// SetValue converts v to the declared type and stores it.
func (p *Property) SetValue(v cty.Value) error {
	if err := p.checkWrite(KindValue); err != nil {
		return err
	}
	if v == cty.NilVal {
		v = cty.NullVal(p.typ)
	}
	converted, err := convert.Convert(v, p.typ)
	if err != nil {
		return &TypeError{Object: p.owner.Name(), Property: p.name, Want: p.typ, Err: err}
	}
	p.value = converted
	p.changed()
	return nil
}

// SetLink sets the target of a Link property. A nil target clears it.
func (p *Property) SetLink(target *Object) error {
	if err := p.checkWrite(KindLink); err != nil {
		return err
	}
	p.links = nil
	if target != nil {
		p.links = []Link{{Target: target}}
	}
	p.changed()
	return nil
}

// SetLinks replaces the targets of a LinkList property. Nil entries are
// kept and contribute nothing to the dependency graph.
func (p *Property) SetLinks(targets []*Object) error {
	if err := p.checkWrite(KindLinkList); err != nil {
		return err
	}
	p.links = make([]Link, len(targets))
	for i, t := range targets {
		p.links[i] = Link{Target: t}
	}
	p.changed()
	return nil
}

// SetLinkSub sets the target and sub-element names of a LinkSub property.
func (p *Property) SetLinkSub(target *Object, subs ...string) error {
	if err := p.checkWrite(KindLinkSub); err != nil {
		return err
	}
	p.links = nil
	if target != nil {
		p.links = []Link{{Target: target, Subs: slices.Clone(subs)}}
	}
	p.changed()
	return nil
}

// SetLinkSubs replaces the references of a LinkSubList property.
func (p *Property) SetLinkSubs(links []Link) error {
	if err := p.checkWrite(KindLinkSubList); err != nil {
		return err
	}
	p.links = make([]Link, len(links))
	for i, l := range links {
		p.links[i] = Link{Target: l.Target, Subs: slices.Clone(l.Subs)}
	}
	p.changed()
	return nil
}

// SetReferences stores links on any link-family property, dispatching on its
// kind. Loaders use it when the declared kind is only known at runtime.
func (p *Property) SetReferences(links []Link) error {
	switch p.kind {
	case KindLink:
		if len(links) > 1 {
			return fmt.Errorf("property '%s' holds a single link, got %d", p.name, len(links))
		}
		var t *Object
		if len(links) == 1 {
			t = links[0].Target
		}
		return p.SetLink(t)
	case KindLinkList:
		targets := make([]*Object, len(links))
		for i, l := range links {
			targets[i] = l.Target
		}
		return p.SetLinks(targets)
	case KindLinkSub:
		if len(links) > 1 {
			return fmt.Errorf("property '%s' holds a single link, got %d", p.name, len(links))
		}
		if len(links) == 0 {
			return p.SetLinkSub(nil)
		}
		return p.SetLinkSub(links[0].Target, links[0].Subs...)
	case KindLinkSubList:
		return p.SetLinkSubs(links)
	default:
		return &KindError{Object: p.owner.Name(), Property: p.name, Have: p.kind, Want: KindLink}
	}
}

// Touch marks the property and notifies its owner as if its value changed.
func (p *Property) Touch() {
	p.changed()
}

func (p *Property) checkWrite(want Kind) error {
	if p.kind != want {
		return &KindError{Object: p.owner.Name(), Property: p.name, Have: p.kind, Want: want}
	}
	if p.status.Has(PropReadOnly) && !p.owner.TestStatus(StatusRecomputing) && !p.owner.TestStatus(StatusRestoring) {
		return &ReadOnlyError{Object: p.owner.Name(), Property: p.name}
	}
	return nil
}

func (p *Property) changed() {
	p.status |= PropTouched
	p.owner.propertyChanged(p)
}
