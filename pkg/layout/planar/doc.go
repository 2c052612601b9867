// Package planar draws the graph as a layered (Sugiyama-style) diagram.
//
// # Pipeline
//
// Apply runs the classic phases in order:
//
//  1. Stratify: edges are taken in their effective direction (backwards
//     edges flipped, undirected edges as stored) and cycles are broken by
//     reversing DFS back edges.
//  2. Layering: longest-path or network simplex. With tiers configured the
//     nodes of each tier are contracted into one vertex and consecutive
//     tiers are chained by rank edges before layering, so a tier always
//     lands on a single layer.
//  3. Normalisation: edges spanning more than one layer are subdivided with
//     dummy vertices.
//  4. Decrossing: barycenter sweeps alternate downward and upward; the
//     ordering with the fewest crossings (counted with a Fenwick tree) wins.
//     With a tier order key, keyed nodes take their layer's keyed slots in
//     key order.
//  5. Coordinates: a quadratic objective pulling connected vertices into
//     vertical alignment (dummy chains weighted strongest) is minimised with
//     L-BFGS under a separation penalty, then an exact sweep enforces the
//     minimum gap between neighbours.
//
// Every edge gets a polyline in the result's EdgePoints, keyed
// "source||target" by its stored endpoints, starting at the source and
// ending at the target.
//
// The OnAddNode and OnAddEdge hooks recompute the whole layout from the
// given snapshot and stream it through the tick callback.
//
// Algorithmic failures are reported as a single LAYOUT_FAILED error.
// Invalid tier configuration keeps its INVALID_TIERS or INVALID_ORDER code.
package planar
