package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ObjectsInSourceOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "part.hcl", `
document {
  name = "Bracket"
}

object "box" "Box" {
  label  = "Base plate"
  Width  = 5
  Length = 10
}

object "script" "Stats" {
  Factor = 2
  script {
    Volume = object.Box.Length * object.Box.Width
    Area   = object.Box.Length
  }
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Bracket", model.Name)
	require.Len(t, model.Objects, 2)

	box := model.Objects[0]
	assert.Equal(t, "box", box.Type)
	assert.Equal(t, "Box", box.Name)
	assert.Equal(t, "Base plate", box.Label)
	require.Len(t, box.Attributes, 2)
	assert.Equal(t, "Width", box.Attributes[0].Name)
	assert.Equal(t, "Length", box.Attributes[1].Name)
	assert.Nil(t, box.Attribute("label"))
	assert.Empty(t, box.Script)

	stats := model.Object("Stats")
	require.NotNil(t, stats)
	require.Len(t, stats.Attributes, 1)
	require.Len(t, stats.Script, 2)
	assert.Equal(t, "Volume", stats.Script[0].Name)
	assert.Equal(t, "Area", stats.Script[1].Name)
}

func TestLoad_DirectoryAndDefaultName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `object "box" "A" {}`)
	writeFile(t, dir, "nested/b.hcl", `object "box" "B" {}`)
	writeFile(t, dir, "notes.txt", `object "box" "C" {}`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "a", model.Name)
	require.Len(t, model.Objects, 2)
	assert.Equal(t, "A", model.Objects[0].Name)
	assert.Equal(t, "B", model.Objects[1].Name)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name: "duplicate object across files",
			files: map[string]string{
				"a.hcl": `object "box" "Box" {}`,
				"b.hcl": `object "box" "Box" {}`,
			},
			wantErr: "duplicate object name 'Box'",
		},
		{
			name:    "invalid name",
			files:   map[string]string{"a.hcl": `object "box" "My Box" {}`},
			wantErr: "not a valid identifier",
		},
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `object "box" "Box" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "nested block in object",
			files:   map[string]string{"a.hcl": `object "box" "Box" { extra {} }`},
			wantErr: "object 'Box'",
		},
		{
			name: "conflicting document names",
			files: map[string]string{
				"a.hcl": `document { name = "One" }`,
				"b.hcl": `document { name = "Two" }`,
			},
			wantErr: "conflicts with",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tc.files {
				writeFile(t, dir, name, content)
			}
			_, err := NewLoader().Load(context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_NoFiles(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl files found")
}
