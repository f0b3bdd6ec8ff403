package module_contract

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/app"
	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/specialistvlad/featuregraph/modules/solid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// contractModule registers types that misbehave in the ways the engine
// must contain.
type contractModule struct {
	cancel context.CancelFunc
}

func (m *contractModule) Register(r *registry.Registry) {
	r.RegisterType(&registry.ObjectType{
		Name: "panicky",
		New: func(*config.Object) (object.Spec, error) {
			return object.Spec{Behavior: object.BehaviorFunc(func(context.Context, *object.Object) error {
				var shape map[string]float64
				shape["volume"] = 1 // assignment to a nil map
				return nil
			})}, nil
		},
	})
	r.RegisterType(&registry.ObjectType{
		Name: "recursive",
		New: func(*config.Object) (object.Spec, error) {
			return object.Spec{Behavior: object.BehaviorFunc(func(ctx context.Context, o *object.Object) error {
				d := o.Owner().(*document.Document)
				if err := d.RecomputeObject(ctx, o.Name()); err != nil {
					return err
				}
				return errors.New("nested recompute was not rejected")
			})}, nil
		},
	})
	r.RegisterType(&registry.ObjectType{
		Name: "interrupt",
		New: func(*config.Object) (object.Spec, error) {
			return object.Spec{
				Decls: []object.Decl{{Name: "Source", Kind: object.KindLink}},
				Behavior: object.BehaviorFunc(func(ctx context.Context, o *object.Object) error {
					if m.cancel != nil {
						m.cancel()
					}
					return nil
				}),
			}, nil
		},
	})
	r.RegisterType(&registry.ObjectType{
		Name: "probe",
		New: func(*config.Object) (object.Spec, error) {
			return object.Spec{
				Decls:    []object.Decl{{Name: "Source", Kind: object.KindLink}, {Name: "Seen", Type: cty.Number, Status: object.PropOutput}},
				Behavior: object.BehaviorFunc(func(context.Context, *object.Object) error { return nil }),
			}, nil
		},
	})
}

// Test for: a panicking computation becomes a fatal error of that object
// only.
func TestModuleContract_PanicIsContained(t *testing.T) {
	doc := `
		object "panicky" "Crash" {}
		object "box" "Box" {}
	`
	a, _ := app.SetupAppTest(t, map[string]string{"main.hcl": doc}, nil, &contractModule{}, &solid.Module{})

	report, err := a.Recompute(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Equal(t, []string{"Box"}, report.Executed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, recompute.KindFatal, report.Failures[0].Kind)
	assert.Contains(t, report.Errors["Crash"], "panicked")
}

// Test for: an object that recomputes itself from inside its computation
// is rejected and ends in error.
func TestModuleContract_ReentrancyIsRejected(t *testing.T) {
	doc := `object "recursive" "Loop" {}`
	a, logs := app.SetupAppTest(t, map[string]string{"main.hcl": doc}, nil, &contractModule{})

	report, err := a.Recompute(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Success)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, recompute.KindReentrancy, report.Failures[0].Kind)
	assert.Contains(t, logs.String(), "Rejected nested recompute.")
}

// Test for: cancelling the context stops the pass between objects and
// leaves the rest touched and pending.
func TestModuleContract_AbortLeavesPending(t *testing.T) {
	doc := `
		object "interrupt" "Stop" {}
		object "probe" "After" {
			Source = object.Stop
		}
	`
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mod := &contractModule{cancel: cancel}
	a, _ := app.SetupAppTest(t, map[string]string{"main.hcl": doc}, nil, mod)

	report, err := a.Recompute(ctx)
	require.NoError(t, err)
	assert.True(t, report.Aborted)
	assert.False(t, report.Success)
	assert.Equal(t, []string{"Stop"}, report.Executed)
	assert.Equal(t, []string{"After"}, report.Pending)

	after, err := a.Object("After")
	require.NoError(t, err)
	assert.True(t, after.Touched)

	// The next pass picks up where the aborted one stopped.
	mod.cancel = nil
	report, err = a.Recompute(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, []string{"After"}, report.Executed)
}
