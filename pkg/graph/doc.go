// Package graph provides the declarative causal-graph wire format.
//
// The declarative graph is owned by the caller. It is what an editor receives
// as input, what it emits after every structural change, and what gets stored
// as JSON. The layout engine never mutates it: it is converted into the
// internal simulation graph (package simgraph) by package convert and
// produced again by [convert.Serialize].
//
// # Format
//
// Nodes and edges are keyed by node identifier:
//
//	{
//	  "version": "0.1",
//	  "nodes": {
//	    "smoking": {"identifier": "smoking", "meta": {"rendering_properties": {"label": "Smoking"}}},
//	    "cancer":  {"identifier": "cancer", "node_class": "Node"}
//	  },
//	  "edges": {
//	    "smoking": {"cancer": {"source": "smoking", "destination": "cancer", "edge_type": "directed"}}
//	  }
//	}
//
// edges[a][b] is the edge from a to b. Absence means no edge.
//
// # Extras
//
// Any top-level key on a node or edge that this package does not recognise
// is kept in Extras and written back verbatim, so callers can attach their
// own fields and get them back after a round-trip through the engine.
//
// # Rendering Properties
//
// Meta["rendering_properties"] carries rendering hints. The engine reads
// x, y (position hints), latent and forced; everything else (label, tooltip,
// colours) is carried through untouched.
//
// # Concurrency
//
// Graph values are plain data. Concurrent reads are safe; callers must
// synchronise writes.
package graph
