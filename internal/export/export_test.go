package export

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/depgraph"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDoc(t *testing.T) (*document.Document, *depgraph.Graph) {
	t.Helper()
	ctx := context.Background()
	d := document.New("Doc")
	add := func(name, label string) *object.Object {
		o, err := d.AddObject(ctx, object.Spec{
			Type:  "thing",
			Name:  name,
			Label: label,
			Decls: []object.Decl{{Name: "Deps", Kind: object.KindLinkList}},
		})
		require.NoError(t, err)
		return o
	}
	box := add("Box", "Base \"plate\"")
	fillet := add("Fillet", "")
	a := add("A", "")
	b := add("B", "")

	require.NoError(t, fillet.Property("Deps").SetLinks([]*object.Object{box}))
	require.NoError(t, a.Property("Deps").SetLinks([]*object.Object{b}))
	require.NoError(t, b.Property("Deps").SetLinks([]*object.Object{a}))

	box.Purge()
	fillet.SetError(errors.New("boom"))
	fillet.Purge()
	return d, depgraph.Build(ctx, d.Objects())
}

func TestDot(t *testing.T) {
	_, g := buildDoc(t)
	out := Dot(g)

	assert.Contains(t, out, "digraph G {")
	assert.Contains(t, out, `"Box" [label="Base \"plate\" (Box)", tooltip="thing", style=filled, fillcolor="#ffffff"];`)
	assert.Contains(t, out, `"Fillet" [label="Fillet", tooltip="thing", style=filled, fillcolor="#ef9a9a"];`)
	assert.Contains(t, out, `"A" [label="A", tooltip="thing", style="filled,dashed"`)
	assert.Contains(t, out, `"Fillet" -> "Box";`)
	assert.Contains(t, out, `"A" -> "B" [color="#c62828"];`)
	assert.Contains(t, out, `"B" -> "A" [color="#c62828"];`)
}

func TestMermaid(t *testing.T) {
	_, g := buildDoc(t)
	out := Mermaid(g)

	assert.Contains(t, out, "graph BT\n")
	assert.Contains(t, out, `    Box["Base 'plate' (Box)"]`)
	assert.Contains(t, out, "    Fillet --> Box\n")
	assert.Contains(t, out, "    A -.-> B\n")
	assert.Contains(t, out, "    class Fillet failed;\n")
	assert.Contains(t, out, "    class A cycle;\n")
	assert.NotContains(t, out, "class Box")
}

func TestRender(t *testing.T) {
	_, g := buildDoc(t)

	out, err := Render(g, "")
	require.NoError(t, err)
	assert.Equal(t, Dot(g), out)

	out, err = Render(g, FormatMermaid)
	require.NoError(t, err)
	assert.Equal(t, Mermaid(g), out)

	_, err = Render(g, "svg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown graph format 'svg'")
}

func TestSanitizeMermaidID(t *testing.T) {
	assert.Equal(t, "a_b_c_d_e", sanitizeMermaidID(`a.b-c/d\e`))
}
