package scheduler

import (
	"container/heap"

	"github.com/specialistvlad/featuregraph/internal/depgraph"
)

// Order returns every node of g in a topological order that breaks ties by
// creation order. It fails with the graph's *depgraph.CycleError if g is
// cyclic.
func Order(g *depgraph.Graph) ([]int, error) {
	if err := g.Err(); err != nil {
		return nil, err
	}
	return OrderSubset(g, nil)
}

// OrderSubset schedules the subgraph induced by the nodes accepted by
// include. A nil include accepts every node. Edges leaving the subgraph are
// ignored. It fails with a *depgraph.CycleError if the subgraph is cyclic.
func OrderSubset(g *depgraph.Graph, include func(i int) bool) ([]int, error) {
	n := g.Len()
	inSet := make([]bool, n)
	indegree := make([]int, n)
	total := 0
	for i := range n {
		inSet[i] = include == nil || include(i)
		if inSet[i] {
			total++
		}
	}

	ready := &intMinHeap{}
	for i := range n {
		if !inSet[i] {
			continue
		}
		for _, d := range g.DependsOn(i) {
			if inSet[d] {
				indegree[i]++
			}
		}
		if g.HasSelfLink(i) {
			indegree[i]++
		}
		if indegree[i] == 0 {
			*ready = append(*ready, i)
		}
	}
	heap.Init(ready)

	order := make([]int, 0, total)
	for ready.Len() > 0 {
		v := heap.Pop(ready).(int)
		order = append(order, v)
		for _, w := range g.Dependents(v) {
			if !inSet[w] {
				continue
			}
			indegree[w]--
			if indegree[w] == 0 {
				heap.Push(ready, w)
			}
		}
	}

	if len(order) != total {
		stuckAt := func(i int) bool { return inSet[i] && indegree[i] > 0 }
		if cycleErr := g.CycleErrorWithin(stuckAt); cycleErr != nil {
			return nil, cycleErr
		}
		stuck := &depgraph.CycleError{}
		for i := range n {
			if stuckAt(i) {
				stuck.Members = append(stuck.Members, g.Object(i).Name())
			}
		}
		return nil, stuck
	}
	return order, nil
}

// Positions inverts an order: pos[node] is the node's position, or -1 for
// nodes not in the order.
func Positions(n int, order []int) []int {
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}
	for p, v := range order {
		pos[v] = p
	}
	return pos
}
