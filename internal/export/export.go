// Package export renders the dependency graph of a document for humans:
// Graphviz dot and Mermaid flowcharts. Arrows point from an object to the
// objects it depends on. Objects in error, touched objects and cycle
// members are highlighted.
package export

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/featuregraph/internal/depgraph"
	"github.com/specialistvlad/featuregraph/internal/object"
)

// Format names accepted by Render.
const (
	FormatDot     = "dot"
	FormatMermaid = "mermaid"
)

// Formats lists the supported formats.
var Formats = []string{FormatDot, FormatMermaid}

// Render renders g in the named format.
func Render(g *depgraph.Graph, format string) (string, error) {
	switch format {
	case FormatDot, "":
		return Dot(g), nil
	case FormatMermaid:
		return Mermaid(g), nil
	default:
		return "", fmt.Errorf("unknown graph format '%s' (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

type state int

const (
	stateClean state = iota
	stateTouched
	stateError
	stateCycle
)

func stateOf(g *depgraph.Graph, i int) state {
	o := g.Object(i)
	switch {
	case g.InCycle(i):
		return stateCycle
	case o.IsError():
		return stateError
	case o.IsTouched():
		return stateTouched
	default:
		return stateClean
	}
}

func nodeLabel(o *object.Object) string {
	if o.Label() != "" && o.Label() != o.Name() {
		return fmt.Sprintf("%s (%s)", o.Label(), o.Name())
	}
	return o.Name()
}
