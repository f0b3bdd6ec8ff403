package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const partHCL = `
document {
  name = "Part"
}

object "box" "Box" {
  Length = 4
  Width  = 3
  Height = 2
}

object "pattern" "Row" {
  Base  = object.Box
  Count = 3
}
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "part.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), &out, &errOut, args)
	return out.String(), errOut.String(), err
}

func TestRecomputeCommand(t *testing.T) {
	path := writeDoc(t, partHCL)

	t.Run("yaml report", func(t *testing.T) {
		out, _, err := execute(t, "recompute", path)
		require.NoError(t, err)

		var report map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &report))
		assert.Equal(t, "Part", report["document"])
		assert.Equal(t, true, report["success"])
		assert.Equal(t, []any{"Box", "Row"}, report["executed"])
	})

	t.Run("json report", func(t *testing.T) {
		out, _, err := execute(t, "recompute", "-o", "json", path)
		require.NoError(t, err)

		var report recompute.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.True(t, report.Success)
	})

	t.Run("failure exits with code 1", func(t *testing.T) {
		bad := writeDoc(t, `
object "box" "Box" {
  Width = 0
}
`)
		out, _, err := execute(t, "recompute", bad)
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.Code)
		assert.Contains(t, exitErr.Message, "1 failed objects")
		assert.Contains(t, out, "must be positive")
	})

	t.Run("partial restore exits with code 1", func(t *testing.T) {
		bad := writeDoc(t, `
object "pattern" "Row" {
  Base = object.Ghost
}
`)
		_, _, err := execute(t, "recompute", bad)
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.Code)
		assert.Contains(t, exitErr.Message, "references unknown object")
	})

	t.Run("invalid output", func(t *testing.T) {
		_, _, err := execute(t, "recompute", "-o", "xml", path)
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, _, err := execute(t, "recompute", "--log-level", "loud", path)
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 2, exitErr.Code)
		assert.Contains(t, exitErr.Message, "invalid log-level")
	})

	t.Run("missing document path", func(t *testing.T) {
		_, _, err := execute(t, "recompute")
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Contains(t, exitErr.Message, "DocumentPath is a required")
	})

	t.Run("logs go to stderr", func(t *testing.T) {
		out, errOut, err := execute(t, "recompute", "--log-level", "debug", path)
		require.NoError(t, err)
		assert.NotContains(t, out, "level=")
		assert.Contains(t, errOut, "level=DEBUG")
	})
}

func TestGraphCommand(t *testing.T) {
	path := writeDoc(t, partHCL)

	out, _, err := execute(t, "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, `"Row" -> "Box"`)

	out, _, err = execute(t, "graph", "--format", "mermaid", "--no-recompute", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Row --> Box")
	assert.Contains(t, out, "class Box touched;")

	_, _, err = execute(t, "graph", "--format", "png", path)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
}

func TestConfigFile(t *testing.T) {
	path := writeDoc(t, partHCL)
	cfgPath := filepath.Join(t.TempDir(), "featuregraph.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("document: "+path+"\nlog_level: debug\n"), 0o600))

	_, errOut, err := execute(t, "recompute", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, errOut, "level=DEBUG")

	_, errOut, err = execute(t, "recompute", "--config", cfgPath, "--log-level", "error")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "level=DEBUG", "flags override the config file")

	_, _, err = execute(t, "recompute", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, exitErr.Message, "failed to open config file")
}
