package value

import (
	"context"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestValueObject(t *testing.T) {
	r := registry.NewWithModules(&Module{})
	spec, err := r.NewSpec(&config.Object{Type: "value", Name: "Params", Label: "Parameters"})
	require.NoError(t, err)

	d := document.New("Doc")
	o, err := d.AddObject(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "Parameters", o.Label())
	assert.Empty(t, o.Properties())

	p, err := o.AddDynamicProperty(object.Decl{Name: "Thickness", Type: cty.Number})
	require.NoError(t, err)
	require.NoError(t, p.SetValue(cty.NumberIntVal(3)))

	report, err := recompute.New().Recompute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"Params"}, report.Executed)
	assert.False(t, o.IsTouched())
}
