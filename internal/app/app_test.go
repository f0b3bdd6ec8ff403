package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/hcl_adapter"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/specialistvlad/featuregraph/internal/reportstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const bracketHCL = `
document {
  name = "Bracket"
}

object "box" "Box" {
  Length = 10
  Width  = 5
  Height = 2
}

object "fillet" "Fillet" {
  Base   = object.Box.Edge1
  Radius = 0.5
}

object "script" "Half" {
  script {
    value = object.Box.Volume / 2
  }
}
`

func volume(t *testing.T, a *App, name string) float64 {
	t.Helper()
	var f float64
	require.NoError(t, a.WithDocument(func(d *document.Document) error {
		v := d.Object(name).Property("Volume").Value()
		f, _ = v.AsBigFloat().Float64()
		return nil
	}))
	return f
}

func TestNewApp_LoadsAndRecomputes(t *testing.T) {
	a, logs := SetupAppTest(t, map[string]string{"main.hcl": bracketHCL}, nil)
	require.NoError(t, a.LoadErr())
	assert.Equal(t, "Bracket", a.DocumentName())

	report, err := a.Recompute(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Success, report.Errors)
	assert.Equal(t, []string{"Box", "Fillet", "Half"}, report.Executed)
	assert.Equal(t, 100.0, volume(t, a, "Box"))

	var half cty.Value
	require.NoError(t, a.WithDocument(func(d *document.Document) error {
		half = d.Object("Half").Property("value").Value()
		return nil
	}))
	assert.True(t, half.Equals(cty.NumberIntVal(50)).True(), half.GoString())

	latest, err := a.LatestReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Executed, latest.Executed)
	assert.Contains(t, logs.String(), "Recompute finished.")
}

func TestNewApp_Errors(t *testing.T) {
	t.Run("missing document", func(t *testing.T) {
		cfg, err := NewConfig(Config{DocumentPath: filepath.Join(t.TempDir(), "nothing")})
		require.NoError(t, err)
		_, err = NewApp(context.Background(), &SafeBuffer{}, cfg, hcl_adapter.NewLoader())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load document")
	})

	t.Run("unknown type", func(t *testing.T) {
		dir := WriteDocument(t, map[string]string{"main.hcl": `object "teapot" "Pot" {}`})
		cfg, err := NewConfig(Config{DocumentPath: dir})
		require.NoError(t, err)
		_, err = NewApp(context.Background(), &SafeBuffer{}, cfg, hcl_adapter.NewLoader())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown type 'teapot'")
	})

	t.Run("partial restore is kept", func(t *testing.T) {
		a, _ := SetupAppTest(t, map[string]string{"main.hcl": `
object "box" "Box" {}
object "fillet" "Fillet" {
  Base = object.Missing.Edge1
}
`}, nil)
		require.Error(t, a.LoadErr())
		assert.Contains(t, a.LoadErr().Error(), "references unknown object")
		assert.Len(t, a.Objects(), 2)
	})
}

func TestApp_IncrementalRecompute(t *testing.T) {
	a, _ := SetupAppTest(t, map[string]string{"main.hcl": bracketHCL}, nil)
	ctx := context.Background()
	_, err := a.Recompute(ctx)
	require.NoError(t, err)

	report, err := a.Recompute(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Executed, "nothing is touched after a clean pass")

	require.NoError(t, a.SetProperty("Box", "Height", "4"))
	report, err = a.Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Box", "Fillet", "Half"}, report.Executed)
	assert.Equal(t, 200.0, volume(t, a, "Box"))

	require.NoError(t, a.Touch("Fillet"))
	report, err = a.Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fillet"}, report.Executed)

	history, err := a.Reports(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestApp_SetProperty(t *testing.T) {
	a, _ := SetupAppTest(t, map[string]string{"main.hcl": bracketHCL + `
object "box" "Other" {}
`}, nil)
	ctx := context.Background()

	t.Run("binding creates a dependency", func(t *testing.T) {
		require.NoError(t, a.SetProperty("Other", "Height", "object.Box.Height * 3"))
		info, err := a.Object("Other")
		require.NoError(t, err)
		for _, p := range info.Properties {
			if p.Name == "Height" {
				assert.Equal(t, "object.Box.Height * 3", p.Expression)
			}
		}

		_, err = a.Recompute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10.0*10*6, volume(t, a, "Other"))

		graph, err := a.Graph(ctx, "mermaid")
		require.NoError(t, err)
		assert.Contains(t, graph, "Other --> Box")
	})

	t.Run("constant drops the binding", func(t *testing.T) {
		require.NoError(t, a.SetProperty("Other", "Height", "1"))
		info, err := a.Object("Other")
		require.NoError(t, err)
		for _, p := range info.Properties {
			if p.Name == "Height" {
				assert.Empty(t, p.Expression)
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		assert.ErrorIs(t, a.SetProperty("Nope", "Height", "1"), document.ErrObjectNotFound)
		assert.ErrorContains(t, a.SetProperty("Other", "Nope", "1"), "has no property 'Nope'")
		assert.ErrorContains(t, a.SetProperty("Other", "Height", "object.Ghost.Height"), "references unknown object 'Ghost'")
		assert.ErrorContains(t, a.SetProperty("Other", "Height", "1 +"), "parsing expression")
		assert.Error(t, a.SetProperty("Other", "Volume", "3"), "outputs are read-only")
	})
}

func TestApp_RecomputeFailureIsReported(t *testing.T) {
	a, _ := SetupAppTest(t, map[string]string{"main.hcl": `
object "box" "Box" {
  Height = -1
}
object "pattern" "Row" {
  Base = object.Box
}
object "sphere" "Ball" {}
`}, nil)

	report, err := a.Recompute(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Contains(t, report.Errors["Box"], "must be positive")
	assert.Equal(t, []string{"Row"}, report.Skipped)
	assert.Equal(t, []string{"Ball"}, report.Executed)

	info, err := a.Object("Box")
	require.NoError(t, err)
	assert.True(t, info.Touched)
	assert.NotEmpty(t, info.Error)

	err = a.RecomputeObject(context.Background(), "Row")
	var upstream *recompute.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestApp_TouchUnknown(t *testing.T) {
	a, _ := SetupAppTest(t, map[string]string{"main.hcl": bracketHCL}, nil)
	assert.ErrorIs(t, a.Touch("Nope"), document.ErrObjectNotFound)

	_, err := a.LatestReport(context.Background())
	assert.ErrorIs(t, err, reportstore.ErrNotFound)
}
