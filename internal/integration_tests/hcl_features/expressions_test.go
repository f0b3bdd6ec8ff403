package hcl_features

import (
	"context"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/app"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// Parameters live on a value object; features bind their dimensions to
// them, and a script derives values from the computed results.
const parametricDoc = `
	document {
		name = "Bracket"
	}

	object "script" "Report" {
		label = "Mass report"
		script {
			mass    = object.Plate.Volume * object.Params.Density
			summary = format("%s weighs %.1f", object.Plate.Label, object.Plate.Volume * object.Params.Density)
		}
	}

	object "box" "Plate" {
		label  = "Mounting plate"
		Length = object.Params.Size
		Width  = object.Params.Size / 2
		Height = max(object.Params.Thickness, 1)
	}

	object "value" "Params" {
		Size      = 20
		Thickness = 2
		Density   = 0.5
		Material  = "steel"
	}

	object "value" "Catalog" {
		Parts = [object.Plate, object.Report]
	}
`

func numberOf(t *testing.T, a *app.App, obj, prop string) float64 {
	t.Helper()
	var f float64
	require.NoError(t, a.WithDocument(func(d *document.Document) error {
		f, _ = d.Object(obj).Property(prop).Value().AsBigFloat().Float64()
		return nil
	}))
	return f
}

// Test for: forward references, expression bindings, dynamic properties and
// scripts recompute in dependency order, and a parameter change flows
// through every binding.
func TestHCLFeatures_ParametricDocument(t *testing.T) {
	// --- Arrange ---
	a, _ := app.SetupAppTest(t, map[string]string{"bracket.hcl": parametricDoc}, nil)
	require.NoError(t, a.LoadErr())
	ctx := context.Background()

	// --- Act ---
	report, err := a.Recompute(ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, report.Success, report.Errors)
	assert.Equal(t, []string{"Params", "Plate", "Report", "Catalog"}, report.Executed)
	assert.Equal(t, 20.0*10*2, numberOf(t, a, "Plate", "Volume"))
	assert.Equal(t, 200.0, numberOf(t, a, "Report", "mass"))

	var summary cty.Value
	require.NoError(t, a.WithDocument(func(d *document.Document) error {
		summary = d.Object("Report").Property("summary").Value()

		assert.True(t, d.Object("Params").Property("Material").Dynamic())
		assert.Equal(t, "link_list", d.Object("Catalog").Property("Parts").Kind().String())
		return nil
	}))
	assert.Equal(t, "Mounting plate weighs 200.0", summary.AsString())

	// --- Act: change a parameter ---
	require.NoError(t, a.SetProperty("Params", "Thickness", "4"))
	report, err = a.Recompute(ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"Params", "Plate", "Report", "Catalog"}, report.Executed)
	assert.Equal(t, 800.0, numberOf(t, a, "Plate", "Volume"))
	assert.Equal(t, 400.0, numberOf(t, a, "Report", "mass"))
}

// Test for: the fail() function turns into a computation error of the
// object that evaluates it.
func TestHCLFeatures_FailFunction(t *testing.T) {
	doc := `
		object "value" "Params" {
			Size = 0
		}

		object "script" "Check" {
			script {
				size = object.Params.Size > 0 ? object.Params.Size : fail("size must be positive")
			}
		}
	`
	a, _ := app.SetupAppTest(t, map[string]string{"main.hcl": doc}, nil)

	report, err := a.Recompute(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Contains(t, report.Errors["Check"], "size must be positive")
	assert.Equal(t, []string{"Params"}, report.Executed)
}
