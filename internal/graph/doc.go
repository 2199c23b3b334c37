// Package graph holds the request execution graph: a DAG of request nodes
// connected by inferred dependency edges.
//
// The graph is assembled once by the builder and is read-only afterwards.
// It answers the questions the executor and the reporting layer ask:
//
//   - DetectCycles enumerates simple cycles in a deterministic order.
//   - TopologicalOrder returns a Kahn ordering with ties broken by insertion
//     position, or a *DependencyCycleError.
//   - ParallelGroups partitions the nodes into waves; every edge points from
//     an earlier wave to a later one.
//   - LinearRequests and ToComposite flatten the graph into a single
//     sequential request.
//   - Stats and Visualize summarize the graph for humans.
//
// Node identity and footprints never change once added. Execution outcomes
// are tracked by the executor in its own side-table.
package graph
