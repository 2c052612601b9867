// Package simgraph provides the internal simulation graph used by the layout
// engine.
//
// # Overview
//
// The simulation graph is a mutable, directed, attributed graph keyed by the
// same node identifiers as the caller's declarative graph (package graph).
// Node and edge attributes are flat string-keyed maps: the declarative
// rendering metadata is flattened into "meta.rendering_properties.*" keys by
// package convert, and layout strategies add "x", "y" and "category".
//
// One Graph lives for the lifetime of an editor session. It is mutated in
// place on every declarative update and every position update, and is only
// ever touched from the goroutine that owns it. Layout workers never share
// it: they receive an [Snapshot] produced by [Graph.Export] and rebuild their
// own copy with [FromSnapshot].
//
// # Observers
//
// [Graph.OnMutated] registers a listener that is called synchronously after
// every mutation with an [Event] describing it. Editors use this to debounce
// serialization and re-rendering; no framework is involved.
//
// # Ordering
//
// Nodes and edges iterate in insertion order. Layouts that need determinism
// (circular, planar, marketing) depend on this.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must synchronise
// access when several goroutines read or modify the same graph.
package simgraph
