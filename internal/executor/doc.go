// Package executor runs a request execution graph against a driver set.
//
// Two modes are supported. Sequential mode walks the topological order one
// node at a time. Parallel mode walks the parallel groups: nodes inside a
// wave run on a bounded worker pool, and a hard barrier separates waves.
//
// A failed node whose request does not allow failure aborts the run: in
// sequential mode nothing after it is dispatched, in parallel mode the
// current wave finishes and no later wave starts. Outcomes are kept in a
// side-table keyed by node id and reported in topological order.
package executor
