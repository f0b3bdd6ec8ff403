// Package script provides the script object type: an object whose outputs
// are expressions declared in a nested `script` block.
//
//	object "script" "Stats" {
//	  AlwaysRecompute = false
//	  script {
//	    Volume = object.Box.Length * object.Box.Width * object.Box.Height
//	    Heavy  = self.Volume > 1000
//	  }
//	}
//
// Outputs are evaluated in source order, so later outputs may read earlier
// ones through `self`.
package script

import (
	"context"
	"errors"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/expr"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// PropAlwaysRecompute forces a script to execute in every recompute.
const PropAlwaysRecompute = "AlwaysRecompute"

// Register registers the script type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&registry.ObjectType{
		Name:          "script",
		Description:   "Object whose outputs are computed by expressions.",
		AcceptsScript: true,
		New:           NewSpec,
	})
}

// NewSpec builds a script object from its configuration: one read-only
// output property and one expression binding per script assignment.
func NewSpec(cfg *config.Object) (object.Spec, error) {
	if len(cfg.Script) == 0 {
		return object.Spec{}, errors.New("script block with at least one output is required")
	}
	spec := object.Spec{
		Decls: []object.Decl{
			{Name: PropAlwaysRecompute, Type: cty.Bool, Default: cty.False, Doc: "Execute in every recompute."},
		},
		Behavior: behavior{},
	}
	for _, a := range cfg.Script {
		if a.Name == PropAlwaysRecompute {
			return object.Spec{}, errors.New("'" + PropAlwaysRecompute + "' cannot be used as an output name")
		}
		b, err := expr.New(a.Name, a.Expr)
		if err != nil {
			return object.Spec{}, err
		}
		spec.Decls = append(spec.Decls, object.Decl{
			Name:   a.Name,
			Status: object.PropOutput | object.PropReadOnly,
			Doc:    "Script output.",
		})
		spec.Bindings = append(spec.Bindings, b)
	}
	return spec, nil
}

type behavior struct{}

// Execute runs after the outputs were evaluated and only logs them.
func (behavior) Execute(ctx context.Context, o *object.Object) error {
	logger := ctxlog.FromContext(ctx)
	for _, b := range o.Bindings() {
		logger.Debug("Script output computed.", "object", o.Name(), "output", b.Property())
	}
	return nil
}

// MustExecute implements object.MustExecuter.
func (behavior) MustExecute(o *object.Object) bool {
	p := o.Property(PropAlwaysRecompute)
	if p == nil {
		return false
	}
	v := p.Value()
	return !v.IsNull() && v.True()
}
