package error_handling

import (
	"context"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/app"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: a failing object skips its dependents, unrelated objects still
// run, and fixing the input recovers on the next pass.
func TestErrorHandling_FailureSkipsDependents(t *testing.T) {
	// --- Arrange ---
	doc := `
		object "box" "Box" {
			Length = 10
			Width  = 10
			Height = 10
		}

		object "fillet" "Fillet" {
			Base   = object.Box.Edge1
			Radius = -1
		}

		object "pattern" "Pattern" {
			Base = object.Fillet
		}

		object "sphere" "Sphere" {}
	`
	a, _ := app.SetupAppTest(t, map[string]string{"main.hcl": doc}, nil)
	ctx := context.Background()

	// --- Act ---
	report, err := a.Recompute(ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Equal(t, []string{"Box", "Sphere"}, report.Executed)
	assert.Equal(t, []string{"Fillet"}, report.Failed())
	assert.Equal(t, []string{"Pattern"}, report.Skipped)
	assert.Contains(t, report.Errors["Pattern"], "upstream failure of 'Fillet'")

	for _, f := range report.Failures {
		switch f.Object {
		case "Fillet":
			assert.Equal(t, recompute.KindComputation, f.Kind)
		case "Pattern":
			assert.Equal(t, recompute.KindUpstream, f.Kind)
		}
	}

	fillet, err := a.Object("Fillet")
	require.NoError(t, err)
	assert.True(t, fillet.Touched, "a failed object stays touched")
	assert.Contains(t, fillet.Status, "error")

	// --- Act: fix the radius ---
	require.NoError(t, a.SetProperty("Fillet", "Radius", "1"))
	report, err = a.Recompute(ctx)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, report.Success, report.Errors)
	assert.Equal(t, []string{"Fillet", "Pattern"}, report.Executed)
	fillet, err = a.Object("Fillet")
	require.NoError(t, err)
	assert.Empty(t, fillet.Error)
}
