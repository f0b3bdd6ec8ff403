package app

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/expr"
	"github.com/specialistvlad/featuregraph/internal/object"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ObjectInfo is the JSON view of an object served by the control server.
type ObjectInfo struct {
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Status     string         `json:"status"`
	Touched    bool           `json:"touched"`
	Error      string         `json:"error,omitempty"`
	Properties []PropertyInfo `json:"properties,omitempty"`
}

// PropertyInfo is the JSON view of a property.
type PropertyInfo struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Value      any      `json:"value,omitempty"`
	Links      []string `json:"links,omitempty"`
	Expression string   `json:"expression,omitempty"`
	Output     bool     `json:"output,omitempty"`
	ReadOnly   bool     `json:"read_only,omitempty"`
	Dynamic    bool     `json:"dynamic,omitempty"`
}

// Objects describes every object in creation order, without properties.
func (a *App) Objects() []ObjectInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	objs := a.doc.Objects()
	out := make([]ObjectInfo, 0, len(objs))
	for _, o := range objs {
		out = append(out, describe(o, false))
	}
	return out
}

// Object describes the named object including its properties.
func (a *App) Object(name string) (ObjectInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	o := a.doc.Object(name)
	if o == nil {
		return ObjectInfo{}, fmt.Errorf("object '%s': %w", name, document.ErrObjectNotFound)
	}
	return describe(o, true), nil
}

// SetProperty assigns an HCL expression to a value property. A constant is
// stored directly and drops any binding; anything else becomes the
// property's new binding. Objects referenced by the expression must exist.
func (a *App) SetProperty(name, prop, src string) error {
	e, diags := hclsyntax.ParseExpression([]byte(src), prop, hcl.InitialPos)
	if diags.HasErrors() {
		return fmt.Errorf("parsing expression for '%s': %w", prop, diags)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	o := a.doc.Object(name)
	if o == nil {
		return fmt.Errorf("object '%s': %w", name, document.ErrObjectNotFound)
	}
	p := o.Property(prop)
	if p == nil {
		return fmt.Errorf("object '%s' has no property '%s'", name, prop)
	}

	if expr.IsConstant(e) {
		v, err := expr.Constant(e)
		if err != nil {
			return err
		}
		if err := p.SetValue(v); err != nil {
			return err
		}
		o.RemoveBinding(prop)
		a.logger.Debug("Property set.", "object", name, "property", prop)
		return nil
	}

	b, err := expr.Parse(prop, src)
	if err != nil {
		return err
	}
	for _, dep := range b.Dependencies() {
		if a.doc.Lookup(dep) == nil {
			return fmt.Errorf("expression for '%s' references unknown object '%s'", prop, dep)
		}
	}
	if err := o.SetBinding(b); err != nil {
		return err
	}
	a.logger.Debug("Property bound.", "object", name, "property", prop, "expression", src)
	return nil
}

func describe(o *object.Object, withProps bool) ObjectInfo {
	info := ObjectInfo{
		Name:    o.Name(),
		Label:   o.Label(),
		Type:    o.Type(),
		Status:  o.Status().String(),
		Touched: o.IsTouched(),
	}
	if o.IsError() && o.Err() != nil {
		info.Error = o.Err().Error()
	}
	if !withProps {
		return info
	}
	for _, p := range o.Properties() {
		if p.TestStatus(object.PropHidden) {
			continue
		}
		pi := PropertyInfo{
			Name:     p.Name(),
			Kind:     p.Kind().String(),
			Output:   p.IsOutput(),
			ReadOnly: p.TestStatus(object.PropReadOnly),
			Dynamic:  p.Dynamic(),
		}
		if p.Kind().IsLink() {
			for _, l := range p.Links() {
				if l.Target == nil {
					continue
				}
				pi.Links = append(pi.Links, strings.Join(append([]string{l.Target.Name()}, l.Subs...), "."))
			}
		} else if v := p.Value(); !v.IsNull() && v.IsWhollyKnown() {
			pi.Value = ctyjson.SimpleJSONValue{Value: v}
		}
		if b, ok := o.Binding(p.Name()).(interface{ Source() string }); ok {
			pi.Expression = b.Source()
		}
		info.Properties = append(info.Properties, pi)
	}
	return info
}
