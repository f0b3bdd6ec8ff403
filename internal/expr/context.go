package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// ObjectValue renders an object as a cty object: every property by name,
// links as the names of their targets, plus Name and Label.
func ObjectValue(o *object.Object) cty.Value {
	attrs := make(map[string]cty.Value)
	for _, p := range o.Properties() {
		if p.Kind() == object.KindValue {
			attrs[p.Name()] = p.Value()
			continue
		}
		attrs[p.Name()] = linkValue(p)
	}
	attrs["Name"] = cty.StringVal(o.Name())
	attrs["Label"] = cty.StringVal(o.Label())
	return cty.ObjectVal(attrs)
}

func linkValue(p *object.Property) cty.Value {
	targets := p.Targets()
	switch p.Kind() {
	case object.KindLink, object.KindLinkSub:
		if len(targets) == 0 || targets[0] == nil {
			return cty.NullVal(cty.String)
		}
		return cty.StringVal(targets[0].Name())
	default:
		if len(targets) == 0 {
			return cty.ListValEmpty(cty.String)
		}
		names := make([]cty.Value, len(targets))
		for i, t := range targets {
			if t == nil {
				names[i] = cty.NullVal(cty.String)
				continue
			}
			names[i] = cty.StringVal(t.Name())
		}
		return cty.ListVal(names)
	}
}

// EvalContext builds the evaluation context for an expression of self that
// reads the named objects. Every name must resolve through the owner.
func EvalContext(self *object.Object, names []string) (*hcl.EvalContext, error) {
	owner := self.Owner()
	if owner == nil && len(names) > 0 {
		return nil, fmt.Errorf("object '%s' is not part of a document", self.Name())
	}
	objects := make(map[string]cty.Value, len(names))
	for _, n := range names {
		o := owner.Lookup(n)
		if o == nil {
			return nil, fmt.Errorf("reference to unknown object '%s'", n)
		}
		objects[n] = ObjectValue(o)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			RootObject: cty.ObjectVal(objects),
			RootSelf:   ObjectValue(self),
		},
		Functions: Functions(),
	}, nil
}
