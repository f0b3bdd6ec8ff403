package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_ParseFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An HCL document with a syntax error.
	invalidHCL := `
		object "box" "Box" {
			Length = 10
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, errOut, []string{"recompute", filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should fail on an unparsable document")
	require.Contains(t, runErr.Error(), "failed to parse")
	require.Empty(t, out.String(), "no report should be printed")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
	require.Contains(t, out.String(), "recompute")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// Providing an unknown flag will cause cobra to return an error.
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"recompute", "--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_FailedRecomputeExitCode(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(`
object "sphere" "Ball" {
  Radius = -2
}
`), 0600))

	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"recompute", filePath})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, out.String(), "Ball")
}
