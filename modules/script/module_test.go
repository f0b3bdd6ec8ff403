package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/builder"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/hcl_adapter"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/specialistvlad/featuregraph/modules/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func loadDoc(t *testing.T, src string) (*document.Document, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	model, err := hcl_adapter.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	return builder.Load(context.Background(), model, registry.NewWithModules(&Module{}, &value.Module{}))
}

func TestScript_OutputsFollowInputs(t *testing.T) {
	d, err := loadDoc(t, `
object "value" "Params" {
  Length = 10
  Width  = 4
}
object "script" "Stats" {
  script {
    Area  = object.Params.Length * object.Params.Width
    Large = self.Area > 30
    Text  = format("%d mm2", self.Area)
  }
}
`)
	require.NoError(t, err)
	engine := recompute.New()

	report, err := engine.Recompute(context.Background(), d)
	require.NoError(t, err)
	require.True(t, report.Success, "%v", report.Errors)

	stats := d.Object("Stats")
	assert.True(t, stats.Property("Area").Value().Equals(cty.NumberIntVal(40)).True())
	assert.True(t, stats.Property("Large").Value().True())
	assert.Equal(t, "40 mm2", stats.Property("Text").Value().AsString())
	assert.True(t, stats.Property("Area").IsOutput())

	require.NoError(t, d.Object("Params").Property("Width").SetValue(cty.NumberIntVal(2)))
	report, err = engine.Recompute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"Params", "Stats"}, report.Executed)
	assert.False(t, stats.Property("Large").Value().True())

	report, err = engine.Recompute(context.Background(), d)
	require.NoError(t, err)
	assert.Empty(t, report.Executed)
}

func TestScript_AlwaysRecompute(t *testing.T) {
	d, err := loadDoc(t, `
object "script" "Clock" {
  AlwaysRecompute = true
  script {
    Tick = 1
  }
}
`)
	require.NoError(t, err)
	engine := recompute.New()

	for range 2 {
		report, err := engine.Recompute(context.Background(), d)
		require.NoError(t, err)
		assert.Equal(t, []string{"Clock"}, report.Executed)
	}
}

func TestScript_FailCallIsAComputationError(t *testing.T) {
	d, err := loadDoc(t, `
object "value" "Params" {
  Length = -1
}
object "script" "Check" {
  script {
    Length = object.Params.Length < 0 ? fail("length must not be negative") : object.Params.Length
  }
}
`)
	require.NoError(t, err)

	report, err := recompute.New().Recompute(context.Background(), d)
	require.NoError(t, err)
	assert.False(t, report.Success)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, recompute.KindComputation, report.Failures[0].Kind)
	assert.Contains(t, report.Errors["Check"], "length must not be negative")
	assert.True(t, d.Object("Check").IsError())
}

func TestScript_OutputsAreReadOnly(t *testing.T) {
	d, err := loadDoc(t, `
object "script" "S" {
  script {
    Out = 1
  }
}
`)
	require.NoError(t, err)
	var roErr *object.ReadOnlyError
	require.ErrorAs(t, d.Object("S").Property("Out").SetValue(cty.NumberIntVal(2)), &roErr)
}

func TestNewSpec_Errors(t *testing.T) {
	_, err := loadDoc(t, `object "script" "Empty" {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script block with at least one output is required")

	_, err = loadDoc(t, `
object "script" "Bad" {
  script {
    Out = nope(1)
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown function 'nope'")
}
