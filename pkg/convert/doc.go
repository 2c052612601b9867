// Package convert translates between the declarative graph (package graph)
// and the internal simulation graph (package simgraph).
//
// [Parse] flattens each node's and edge's meta.rendering_properties into
// prefixed attribute keys, seeds positions from rendering hints, infers
// latent nodes and computes force-layout categories. Given an existing
// simulation graph it diffs instead of rebuilding: nodes whose
// layout-relevant attributes are unchanged keep their attribute maps (and so
// their x/y) untouched, which keeps a running simulation undisturbed by
// unrelated edits.
//
// [Serialize] is the inverse. It also normalises the internal-only
// backwards_directed edge type: such edges leave the engine as directed
// edges with swapped endpoints.
package convert
