package export

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/featuregraph/internal/depgraph"
)

var mermaidClasses = map[state]string{
	stateTouched: "touched",
	stateError:   "failed",
	stateCycle:   "cycle",
}

// Mermaid renders g as a Mermaid flowchart.
func Mermaid(g *depgraph.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph BT\n")

	for i := range g.Len() {
		o := g.Object(i)
		label := strings.ReplaceAll(nodeLabel(o), "\"", "'")
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", sanitizeMermaidID(o.Name()), label)
	}
	for _, e := range g.Edges() {
		from, _ := g.IndexOf(e.From)
		to, _ := g.IndexOf(e.To)
		arrow := "-->"
		if g.InCycle(from) && g.InCycle(to) {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.From.Name()), arrow, sanitizeMermaidID(e.To.Name()))
	}

	var styled []string
	for i := range g.Len() {
		if class, ok := mermaidClasses[stateOf(g, i)]; ok {
			styled = append(styled, fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(g.Object(i).Name()), class))
		}
	}
	if len(styled) > 0 {
		sb.WriteString("\n    %% State styles\n")
		sb.WriteString("    classDef touched fill:#fff59d,stroke:#f9a825,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ef9a9a,stroke:#c62828,color:#000;\n")
		sb.WriteString("    classDef cycle fill:#ef9a9a,stroke:#c62828,stroke-dasharray:4,color:#000;\n")
		for _, line := range styled {
			sb.WriteString(line)
		}
	}
	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
