// Package scheduler turns a dependency graph into a deterministic execution
// order.
//
// # How It Works
//
// Order runs Kahn's algorithm over the graph. The ready set is a min-heap
// keyed by creation order, so among all objects whose dependencies are
// already scheduled, the oldest one always comes first. Two calls on an
// unchanged graph therefore return the same order, and an object is never
// placed before anything it depends on.
//
// # Cycles
//
// A cyclic graph has no topological order. Order refuses it with the
// graph's *depgraph.CycleError. OrderSubset schedules an induced subgraph,
// which is how the recompute engine orders the acyclic remainder of a
// document whose cycle members have been set aside.
package scheduler
