package scheduler

import (
	"container/heap"
	"slices"
)

// intMinHeap is a min-heap of node indices.
type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *intMinHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Queue is a de-duplicating min-priority queue of node indices.
type Queue struct {
	h      intMinHeap
	queued map[int]struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{queued: make(map[int]struct{})}
}

// Push adds i unless it is already queued. It reports whether i was added.
func (q *Queue) Push(i int) bool {
	if _, ok := q.queued[i]; ok {
		return false
	}
	q.queued[i] = struct{}{}
	heap.Push(&q.h, i)
	return true
}

// Pop removes and returns the smallest queued index.
func (q *Queue) Pop() (int, bool) {
	if q.h.Len() == 0 {
		return 0, false
	}
	i := heap.Pop(&q.h).(int)
	delete(q.queued, i)
	return i, true
}

// Len returns the number of queued indices.
func (q *Queue) Len() int { return q.h.Len() }

// Items returns the queued indices in ascending order without draining.
func (q *Queue) Items() []int {
	out := make([]int, 0, len(q.queued))
	for i := range q.queued {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}
