package depgraph

import (
	"fmt"
	"strings"
)

// CycleError reports the objects that lie on at least one dependency cycle.
// It is recoverable: the acyclic remainder of the document still recomputes.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected involving: %s", strings.Join(e.Members, ", "))
}
