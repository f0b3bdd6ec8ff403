package expr

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// Binding computes a value property from an HCL expression. It implements
// object.Binding.
type Binding struct {
	prop   string
	expr   hcl.Expression
	source string
	deps   []string
}

var _ object.Binding = (*Binding)(nil)

// New binds e to the named property. It rejects unknown functions and
// variables other than `object` and `self`.
func New(prop string, e hcl.Expression) (*Binding, error) {
	_, fns := References(e)
	if err := checkFunctions(fns); err != nil {
		return nil, fmt.Errorf("expression for '%s': %w", prop, err)
	}
	deps, err := ObjectRefs(e)
	if err != nil {
		return nil, fmt.Errorf("expression for '%s': %w", prop, err)
	}
	return &Binding{prop: prop, expr: e, deps: deps}, nil
}

// Parse parses src as an HCL expression and binds it to the named property.
func Parse(prop, src string) (*Binding, error) {
	e, diags := hclsyntax.ParseExpression([]byte(src), prop, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing expression for '%s': %w", prop, diags)
	}
	b, err := New(prop, e)
	if err != nil {
		return nil, err
	}
	b.source = src
	return b, nil
}

// Property implements object.Binding.
func (b *Binding) Property() string { return b.prop }

// Dependencies implements object.Binding.
func (b *Binding) Dependencies() []string { return slices.Clone(b.deps) }

// Expression returns the bound HCL expression.
func (b *Binding) Expression() hcl.Expression { return b.expr }

// Source returns the expression text when it was parsed from a string, or
// its source range otherwise.
func (b *Binding) Source() string {
	if b.source != "" {
		return b.source
	}
	return b.expr.Range().String()
}

// Evaluate implements object.Binding: it evaluates the expression against
// the current values of its dependencies and stores the result.
func (b *Binding) Evaluate(ctx context.Context, o *object.Object) error {
	v, err := b.Value(o)
	if err != nil {
		return err
	}
	p := o.Property(b.prop)
	if p == nil {
		return fmt.Errorf("object '%s' has no property '%s'", o.Name(), b.prop)
	}
	ctxlog.FromContext(ctx).Debug("Expression evaluated.", "object", o.Name(), "property", b.prop)
	return p.SetValue(v)
}

// Value evaluates the expression for o without storing the result.
func (b *Binding) Value(o *object.Object) (cty.Value, error) {
	evalCtx, err := EvalContext(o, b.deps)
	if err != nil {
		return cty.NilVal, err
	}
	v, diags := b.expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("expression for '%s' produced an unknown value", b.prop)
	}
	return v, nil
}
