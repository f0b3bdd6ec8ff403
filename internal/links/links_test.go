package links

import (
	"context"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	objects map[string]*object.Object
	seq     int
}

func (d *testDoc) Lookup(name string) *object.Object { return d.objects[name] }
func (d *testDoc) ObjectTouched(*object.Object) {}
func (d *testDoc) PropertyChanged(*object.Object, *object.Property) {}

func newTestDoc() *testDoc {
	return &testDoc{objects: make(map[string]*object.Object)}
}

var linkDecls = []object.Decl{
	{Name: "Base", Kind: object.KindLink},
	{Name: "Tools", Kind: object.KindLinkList},
	{Name: "Edges", Kind: object.KindLinkSubList},
}

func (d *testDoc) add(t *testing.T, name string) *object.Object {
	t.Helper()
	o, err := object.New(object.Spec{Name: name, Decls: linkDecls}, d, d.seq)
	require.NoError(t, err)
	d.seq++
	d.objects[name] = o
	return o
}

type staticBinding struct {
	prop string
	deps []string
}

func (b staticBinding) Property() string { return b.prop }
func (b staticBinding) Dependencies() []string { return b.deps }
func (b staticBinding) Evaluate(context.Context, *object.Object) error { return nil }

func names(objs []*object.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name()
	}
	return out
}

func TestOutList(t *testing.T) {
	t.Run("dedupes and orders by creation", func(t *testing.T) {
		d := newTestDoc()
		a := d.add(t, "A")
		b := d.add(t, "B")
		c := d.add(t, "C")

		require.NoError(t, c.Property("Base").SetLink(b))
		require.NoError(t, c.Property("Tools").SetLinks([]*object.Object{b, a, nil, b}))
		require.NoError(t, c.Property("Edges").SetLinkSubs([]object.Link{{Target: a, Subs: []string{"Edge1"}}}))

		out, err := OutList(c)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, names(out))
	})

	t.Run("dangling and foreign targets contribute nothing", func(t *testing.T) {
		d := newTestDoc()
		a := d.add(t, "A")
		b := d.add(t, "B")
		other := newTestDoc()
		foreign := other.add(t, "Foreign")

		require.NoError(t, b.Property("Tools").SetLinks([]*object.Object{a, foreign}))
		a.Detach()

		out, err := OutList(b)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("objects being removed contribute nothing", func(t *testing.T) {
		d := newTestDoc()
		a := d.add(t, "A")
		b := d.add(t, "B")
		require.NoError(t, b.Property("Base").SetLink(a))
		a.SetStatus(object.StatusRemoving, true)

		out, err := OutList(b)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("self link is reported", func(t *testing.T) {
		d := newTestDoc()
		a := d.add(t, "A")
		b := d.add(t, "B")
		require.NoError(t, a.Property("Tools").SetLinks([]*object.Object{a, b}))

		out, err := OutList(a)
		var selfErr *SelfLinkError
		require.ErrorAs(t, err, &selfErr)
		assert.Equal(t, "Tools", selfErr.Property)
		assert.Equal(t, []string{"B"}, names(out), "other links still resolve")
	})

	t.Run("expression bindings add edges", func(t *testing.T) {
		d := newTestDoc()
		a := d.add(t, "A")
		b := d.add(t, "B")
		_, err := b.AddDynamicProperty(object.Decl{Name: "Size"})
		require.NoError(t, err)
		require.NoError(t, b.SetBinding(staticBinding{prop: "Size", deps: []string{"A", "Missing"}}))

		out, err := OutList(b)
		require.NoError(t, err)
		assert.Equal(t, []*object.Object{a}, out)
	})

	t.Run("nil object", func(t *testing.T) {
		out, err := OutList(nil)
		assert.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestInList(t *testing.T) {
	d := newTestDoc()
	a := d.add(t, "A")
	b := d.add(t, "B")
	c := d.add(t, "C")
	require.NoError(t, b.Property("Base").SetLink(a))
	require.NoError(t, c.Property("Tools").SetLinks([]*object.Object{a, b}))

	all := []*object.Object{a, b, c}
	assert.Equal(t, []string{"B", "C"}, names(InList(all, a)))
	assert.Equal(t, []string{"C"}, names(InList(all, b)))
	assert.Empty(t, InList(all, c))
}

func TestRelink(t *testing.T) {
	d := newTestDoc()
	a := d.add(t, "A")
	a2 := d.add(t, "A2")
	b := d.add(t, "B")
	c := d.add(t, "C")
	require.NoError(t, c.Property("Base").SetLink(a))
	require.NoError(t, c.Property("Edges").SetLinkSubs([]object.Link{{Target: a, Subs: []string{"Face1"}}, {Target: b}}))

	changed, err := Relink(c, func(o *object.Object) *object.Object {
		if o == a {
			return a2
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Same(t, a2, c.Property("Base").Target())
	edges := c.Property("Edges").Links()
	assert.Same(t, a2, edges[0].Target)
	assert.Equal(t, []string{"Face1"}, edges[0].Subs)
	assert.Same(t, b, edges[1].Target)

	changed, err = Relink(c, func(*object.Object) *object.Object { return nil })
	require.NoError(t, err)
	assert.False(t, changed)
}
