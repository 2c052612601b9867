// Package check answers validity questions about a simulation graph.
//
// [WouldCreateCycle] is the predicate an editor evaluates before adding or
// reversing an edge: edits that would close a directed cycle can be rejected
// without ever mutating the graph. [IsDAG] reports whether the graph as a
// whole is a DAG in the strict sense used by hierarchical layouts: acyclic
// and made only of plain directed edges.
//
// Both follow the effective direction of an edge: a backwards_directed edge
// stored as s → t points t → s, and undirected edges carry no direction.
package check
