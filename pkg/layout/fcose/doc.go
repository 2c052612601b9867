// Package fcose implements a constraint-based force-directed layout in the
// manner of fCoSE (fast compound spring embedder).
//
// The layout runs in three phases:
//
//  1. Spectral initialisation: when there are no usable prior positions the
//     nodes are placed on the second and third eigenvectors of the graph
//     Laplacian, plus a small seeded jitter.
//  2. Spring-embedder refinement: edge springs, pairwise repulsion, gravity
//     toward the centroid, and compound gravity pulling group members toward
//     their group's centroid. Displacements are capped by a cooling
//     temperature. Skipped in draft quality.
//  3. Constraint projection after every refinement step: nodes of a tier
//     are aligned on the tier axis, consecutive tiers keep at least
//     tierSeparation between them, and members of a tier keep at least
//     nodeSeparation between them in order-key order when one is configured.
//
// Constraints are regenerated from the current tiers and groups on every
// call. Order keys that do not parse as integers are a fatal INVALID_ORDER
// error.
package fcose
