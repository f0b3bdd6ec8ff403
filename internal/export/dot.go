package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/featuregraph/internal/depgraph"
)

var dotNodeStyles = map[state]string{
	stateClean:   `style=filled, fillcolor="#ffffff"`,
	stateTouched: `style=filled, fillcolor="#fff59d"`,
	stateError:   `style=filled, fillcolor="#ef9a9a"`,
	stateCycle:   `style="filled,dashed", fillcolor="#ef9a9a", color="#c62828"`,
}

// Dot renders g as a Graphviz digraph.
func Dot(g *depgraph.Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=BT;\n")
	sb.WriteString("    node [shape=box, fontname=\"Helvetica\"];\n")

	for i := range g.Len() {
		o := g.Object(i)
		fmt.Fprintf(&sb, "    %s [label=%s, tooltip=%s, %s];\n",
			strconv.Quote(o.Name()),
			strconv.Quote(nodeLabel(o)),
			strconv.Quote(o.Type()),
			dotNodeStyles[stateOf(g, i)],
		)
	}

	for _, e := range g.Edges() {
		from, _ := g.IndexOf(e.From)
		to, _ := g.IndexOf(e.To)
		attrs := ""
		if g.InCycle(from) && g.InCycle(to) {
			attrs = ` [color="#c62828"]`
		}
		fmt.Fprintf(&sb, "    %s -> %s%s;\n", strconv.Quote(e.From.Name()), strconv.Quote(e.To.Name()), attrs)
	}

	sb.WriteString("}\n")
	return sb.String()
}
