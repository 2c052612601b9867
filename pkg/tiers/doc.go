// Package tiers resolves tiering and grouping constraints over a simulation
// graph.
//
// A tier is an ordered group of nodes that hierarchical and force layouts
// keep on a shared axis position. Tiers are either given explicitly as an
// array of node-id arrays, or derived from a [Descriptor]: all nodes are
// grouped by the value found at an attribute path, and the groups are
// emitted in an explicit rank order or in discovery order.
//
// # Attribute paths
//
// [Lookup] resolves a path against a node's attributes in this order:
//
//  1. the literal key ("meta.rendering_properties.team" is a flattened key)
//  2. dotted traversal through nested maps ("extras.team")
//  3. the same path inside the node's extras
//  4. the path inside originalMeta, with a leading "meta." stripped
//
// Nodes with no value at the path take no part in tiers or groups.
package tiers
