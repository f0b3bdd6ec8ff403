package recompute_behavior

import (
	"context"
	"sync/atomic"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// spyModule registers a "spy" type that counts its executions and, while
// pokes is positive, writes to the Input of the object named by Poke.
type spyModule struct {
	runs  map[string]*atomic.Int32
	pokes atomic.Int32
}

func newSpyModule(names ...string) *spyModule {
	m := &spyModule{runs: make(map[string]*atomic.Int32)}
	for _, n := range names {
		m.runs[n] = &atomic.Int32{}
	}
	return m
}

func (m *spyModule) Register(r *registry.Registry) {
	r.RegisterType(&registry.ObjectType{
		Name: "spy",
		New: func(*config.Object) (object.Spec, error) {
			return object.Spec{
				Decls: []object.Decl{
					{Name: "Input", Type: cty.Number, Default: cty.Zero},
					{Name: "Source", Kind: object.KindLink},
					{Name: "Poke", Type: cty.String},
				},
				Behavior: object.BehaviorFunc(m.execute),
			}, nil
		},
	})
}

func (m *spyModule) execute(_ context.Context, o *object.Object) error {
	if c, ok := m.runs[o.Name()]; ok {
		c.Add(1)
	}
	poke := o.Property("Poke").Value()
	if poke.IsNull() || m.pokes.Load() <= 0 {
		return nil
	}
	m.pokes.Add(-1)
	target := o.Owner().Lookup(poke.AsString())
	return target.Property("Input").SetValue(cty.NumberIntVal(int64(m.pokes.Load())))
}
