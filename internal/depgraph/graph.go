// Package depgraph builds the dependency graph of a document's objects and
// finds the objects that lie on dependency cycles.
//
// Nodes are addressed by their position in creation order, so index order
// and creation order coincide. Edges are derived on demand from link
// resolution and never stored on the objects themselves.
package depgraph

import (
	"context"
	"errors"
	"slices"

	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/links"
	"github.com/specialistvlad/featuregraph/internal/object"
)

// Graph is an immutable snapshot of the dependency relation.
type Graph struct {
	objects    []*object.Object
	index      map[*object.Object]int
	deps       [][]int // deps[i]: nodes i depends on
	dependents [][]int // dependents[i]: nodes depending on i
	selfLoop   []bool
	inCycle    []bool
	members    []int
}

// Edge is a single dependency: From depends on To.
type Edge struct {
	From *object.Object
	To   *object.Object
}

// Build resolves the links of every object and returns the graph. Links to
// objects outside objs are ignored.
func Build(ctx context.Context, objs []*object.Object) *Graph {
	logger := ctxlog.FromContext(ctx)

	sorted := slices.Clone(objs)
	slices.SortStableFunc(sorted, func(a, b *object.Object) int { return a.Seq() - b.Seq() })

	n := len(sorted)
	g := &Graph{
		objects:    sorted,
		index:      make(map[*object.Object]int, n),
		deps:       make([][]int, n),
		dependents: make([][]int, n),
		selfLoop:   make([]bool, n),
		inCycle:    make([]bool, n),
	}
	for i, o := range sorted {
		g.index[o] = i
	}

	for i, o := range sorted {
		out, err := links.OutList(o)
		if err != nil {
			var selfErr *links.SelfLinkError
			if errors.As(err, &selfErr) {
				logger.Warn("Object links to itself.", "object", o.Name(), "property", selfErr.Property)
				g.selfLoop[i] = true
			}
		}
		for _, target := range out {
			j, ok := g.index[target]
			if !ok {
				continue
			}
			g.deps[i] = append(g.deps[i], j)
			g.dependents[j] = append(g.dependents[j], i)
		}
	}
	for i := range g.dependents {
		slices.Sort(g.dependents[i])
	}

	g.findCycles()
	logger.Debug("Dependency graph built.", "objects", n, "cycle_members", len(g.members))
	return g
}

// findCycles marks every node that lies on a directed cycle. It is a
// depth-first traversal that keeps the in-progress path on a stack; a node
// whose subtree cannot reach anything below it on the stack closes a
// strongly connected component. Components with more than one node, plus
// self-linked nodes, are cycles. Nodes that close a cycle through an
// already finished node are members too.
func (g *Graph) findCycles() {
	n := len(g.objects)
	order := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range order {
		order[i] = -1
	}
	var stack []int
	next := 0

	var visit func(v int)
	visit = func(v int) {
		order[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.deps[v] {
			switch {
			case order[w] == -1:
				visit(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], order[w])
			}
		}

		if low[v] != order[v] {
			return
		}
		var component []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		if len(component) > 1 {
			for _, w := range component {
				g.inCycle[w] = true
			}
		}
	}

	for v := range n {
		if order[v] == -1 {
			visit(v)
		}
	}
	for v, self := range g.selfLoop {
		if self {
			g.inCycle[v] = true
		}
	}
	for v, in := range g.inCycle {
		if in {
			g.members = append(g.members, v)
		}
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.objects) }

// Object returns the object at node i.
func (g *Graph) Object(i int) *object.Object { return g.objects[i] }

// Objects returns all objects in creation order.
func (g *Graph) Objects() []*object.Object { return slices.Clone(g.objects) }

// IndexOf returns the node index of o.
func (g *Graph) IndexOf(o *object.Object) (int, bool) {
	i, ok := g.index[o]
	return i, ok
}

// DependsOn returns the nodes i depends on, in creation order.
func (g *Graph) DependsOn(i int) []int { return slices.Clone(g.deps[i]) }

// Dependents returns the nodes that depend on i, in creation order. It is
// the InList of the object at i.
func (g *Graph) Dependents(i int) []int { return slices.Clone(g.dependents[i]) }

// HasSelfLink reports whether node i links to itself.
func (g *Graph) HasSelfLink(i int) bool { return g.selfLoop[i] }

// HasCycle reports whether any cycle exists.
func (g *Graph) HasCycle() bool { return len(g.members) > 0 }

// InCycle reports whether node i lies on a cycle.
func (g *Graph) InCycle(i int) bool { return g.inCycle[i] }

// CycleMembers returns every object lying on at least one cycle, in creation order.
func (g *Graph) CycleMembers() []*object.Object {
	out := make([]*object.Object, len(g.members))
	for k, i := range g.members {
		out[k] = g.objects[i]
	}
	return out
}

// Err returns a *CycleError naming all cycle members, or nil.
func (g *Graph) Err() error {
	if !g.HasCycle() {
		return nil
	}
	return g.cycleError(func(int) bool { return true })
}

func (g *Graph) cycleError(include func(int) bool) *CycleError {
	e := &CycleError{}
	for _, i := range g.members {
		if include(i) {
			e.Members = append(e.Members, g.objects[i].Name())
		}
	}
	return e
}

// CycleErrorWithin returns the cycle error restricted to nodes accepted by
// include, or nil if none of them lies on a cycle.
func (g *Graph) CycleErrorWithin(include func(int) bool) *CycleError {
	e := g.cycleError(include)
	if len(e.Members) == 0 {
		return nil
	}
	return e
}

// Edges returns every dependency edge ordered by (From, To) creation order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for i, deps := range g.deps {
		sorted := slices.Clone(deps)
		slices.Sort(sorted)
		for _, j := range sorted {
			edges = append(edges, Edge{From: g.objects[i], To: g.objects[j]})
		}
		if g.selfLoop[i] {
			edges = append(edges, Edge{From: g.objects[i], To: g.objects[i]})
		}
	}
	return edges
}

// Downstream returns the seed nodes plus everything that transitively
// depends on them, as a membership slice indexed by node.
func (g *Graph) Downstream(seeds ...int) []bool {
	in := make([]bool, len(g.objects))
	queue := slices.Clone(seeds)
	for _, s := range seeds {
		in[s] = true
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.dependents[v] {
			if !in[w] {
				in[w] = true
				queue = append(queue, w)
			}
		}
	}
	return in
}

// Upstream returns the seed nodes plus everything they transitively depend
// on, as a membership slice indexed by node.
func (g *Graph) Upstream(seeds ...int) []bool {
	in := make([]bool, len(g.objects))
	queue := slices.Clone(seeds)
	for _, s := range seeds {
		in[s] = true
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.deps[v] {
			if !in[w] {
				in[w] = true
				queue = append(queue, w)
			}
		}
	}
	return in
}
