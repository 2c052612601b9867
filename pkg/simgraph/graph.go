package simgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by AddNode when the node key is empty.
	ErrInvalidNodeID = errors.New("node key must not be empty")

	// ErrDuplicateNode is returned by AddNode when the key is already in use.
	ErrDuplicateNode = errors.New("duplicate node key")

	// ErrUnknownNode is returned when an operation names a node that does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateEdge is returned by AddEdge when source → target already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrUnknownEdge is returned when an operation names an edge that does not exist.
	ErrUnknownEdge = errors.New("unknown edge")
)

// Well-known attribute keys.
const (
	AttrX           = "x"
	AttrY           = "y"
	AttrCategory    = "category"
	AttrIdentifier  = "identifier"
	AttrNodeClass   = "node_class"
	AttrSource      = "source"
	AttrDestination = "destination"
	AttrEdgeType    = "edge_type"
	AttrExtras      = "extras"
	// AttrOriginalMeta holds the declarative meta object minus its
	// rendering_properties, which are flattened instead.
	AttrOriginalMeta = "originalMeta"
	// AttrTimeSeriesVariable marks time-series nodes that share a variable.
	AttrTimeSeriesVariable = "time_series_variable"
	// AttrVersion is the graph-level declarative version.
	AttrVersion = "version"
)

// RenderingPrefix prefixes flattened rendering property keys.
const RenderingPrefix = "meta.rendering_properties."

// Rendering returns the flattened attribute key of a rendering property.
func Rendering(prop string) string { return RenderingPrefix + prop }

// Node categories used by the force-based layouts.
const (
	CategoryTarget = "target"
	CategoryLatent = "latent"
	CategoryOther  = "other"
)

// Attributes is the attribute set of a node or an edge.
type Attributes map[string]any

// Clone returns a deep copy of a.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return Attributes(deepCopyMap(a))
}

// Float returns the attribute at key as a float64.
func (a Attributes) Float(key string) (float64, bool) {
	return toFloat(a[key])
}

// Str returns the attribute at key as a string. Non-string values yield "".
func (a Attributes) Str(key string) string {
	s, _ := a[key].(string)
	return s
}

// Bool returns the attribute at key as a bool. Missing and non-bool values
// are false.
func (a Attributes) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Position returns the "x" and "y" attributes when both are set.
func (a Attributes) Position() (x, y float64, ok bool) {
	x, okX := a.Float(AttrX)
	y, okY := a.Float(AttrY)
	return x, y, okX && okY
}

// EdgeKey identifies an edge by its endpoints.
type EdgeKey struct {
	Source string
	Target string
}

// String returns the "source||target" form used for edge-point maps.
func (k EdgeKey) String() string { return k.Source + "||" + k.Target }

// Edge is an edge together with its attributes.
type Edge struct {
	Source     string
	Target     string
	Attributes Attributes
}

// Key returns the edge's endpoint key.
func (e Edge) Key() EdgeKey { return EdgeKey{e.Source, e.Target} }

// Graph is a mutable directed attributed graph.
//
// The zero value is not usable - use New to create a Graph.
type Graph struct {
	nodes     map[string]Attributes
	nodeOrder []string
	out       map[string]map[string]Attributes // source -> target -> attrs
	in        map[string]map[string]struct{}   // target -> sources
	edgeOrder []EdgeKey
	attrs     Attributes // graph-level
	listeners map[int]func(Event)
	nextID    int
	silent    int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]Attributes),
		out:       make(map[string]map[string]Attributes),
		in:        make(map[string]map[string]struct{}),
		listeners: make(map[int]func(Event)),
	}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode adds a node with the given attributes. A nil attribute map is
// replaced by an empty one. Returns ErrInvalidNodeID for an empty key and
// ErrDuplicateNode if the key exists.
func (g *Graph) AddNode(key string, attrs Attributes) error {
	if key == "" {
		return ErrInvalidNodeID
	}
	if _, ok := g.nodes[key]; ok {
		return ErrDuplicateNode
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	g.nodes[key] = attrs
	g.nodeOrder = append(g.nodeOrder, key)
	g.emit(Event{Type: NodeAdded, Node: key})
	return nil
}

// DropNode removes a node and every edge touching it.
func (g *Graph) DropNode(key string) error {
	if _, ok := g.nodes[key]; !ok {
		return ErrUnknownNode
	}
	for target := range g.out[key] {
		g.dropEdge(key, target)
	}
	for source := range g.in[key] {
		g.dropEdge(source, key)
	}
	delete(g.nodes, key)
	delete(g.out, key)
	delete(g.in, key)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(k string) bool { return k == key })
	g.emit(Event{Type: NodeDropped, Node: key})
	return nil
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// NodeAttributes returns the live attribute map of a node. Callers must not
// modify it; use ReplaceNodeAttributes, MergeNodeAttributes or SetPosition.
func (g *Graph) NodeAttributes(key string) (Attributes, bool) {
	a, ok := g.nodes[key]
	return a, ok
}

// ReplaceNodeAttributes swaps the node's attribute set for attrs.
func (g *Graph) ReplaceNodeAttributes(key string, attrs Attributes) error {
	if _, ok := g.nodes[key]; !ok {
		return ErrUnknownNode
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	g.nodes[key] = attrs
	g.emit(Event{Type: NodeUpdated, Node: key})
	return nil
}

// MergeNodeAttributes sets every key of attrs on the node.
func (g *Graph) MergeNodeAttributes(key string, attrs Attributes) error {
	a, ok := g.nodes[key]
	if !ok {
		return ErrUnknownNode
	}
	for k, v := range attrs {
		a[k] = v
	}
	g.emit(Event{Type: NodeUpdated, Node: key})
	return nil
}

// SetNodeAttribute sets a single attribute.
func (g *Graph) SetNodeAttribute(key, name string, value any) error {
	return g.MergeNodeAttributes(key, Attributes{name: value})
}

// SetPosition stores a layout position on the node. It emits PositionUpdated
// rather than NodeUpdated so listeners can tell layout movement apart from
// structural edits.
func (g *Graph) SetPosition(key string, x, y float64) error {
	a, ok := g.nodes[key]
	if !ok {
		return ErrUnknownNode
	}
	a[AttrX] = x
	a[AttrY] = y
	g.emit(Event{Type: PositionUpdated, Node: key})
	return nil
}

// Nodes returns node keys in insertion order.
func (g *Graph) Nodes() []string { return slices.Clone(g.nodeOrder) }

// Order returns the number of nodes.
func (g *Graph) Order() int { return len(g.nodes) }

// =============================================================================
// Edges
// =============================================================================

// AddEdge adds the directed edge source → target.
func (g *Graph) AddEdge(source, target string, attrs Attributes) error {
	if _, ok := g.nodes[source]; !ok {
		return ErrUnknownNode
	}
	if _, ok := g.nodes[target]; !ok {
		return ErrUnknownNode
	}
	if g.HasEdge(source, target) {
		return ErrDuplicateEdge
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	if g.out[source] == nil {
		g.out[source] = make(map[string]Attributes)
	}
	if g.in[target] == nil {
		g.in[target] = make(map[string]struct{})
	}
	g.out[source][target] = attrs
	g.in[target][source] = struct{}{}
	g.edgeOrder = append(g.edgeOrder, EdgeKey{source, target})
	g.emit(Event{Type: EdgeAdded, Source: source, Target: target})
	return nil
}

// DropEdge removes the edge source → target.
func (g *Graph) DropEdge(source, target string) error {
	if !g.HasEdge(source, target) {
		return ErrUnknownEdge
	}
	g.dropEdge(source, target)
	return nil
}

func (g *Graph) dropEdge(source, target string) {
	delete(g.out[source], target)
	delete(g.in[target], source)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(k EdgeKey) bool {
		return k.Source == source && k.Target == target
	})
	g.emit(Event{Type: EdgeDropped, Source: source, Target: target})
}

// HasEdge reports whether source → target exists.
func (g *Graph) HasEdge(source, target string) bool {
	_, ok := g.out[source][target]
	return ok
}

// EdgeAttributes returns the live attribute map of an edge.
func (g *Graph) EdgeAttributes(source, target string) (Attributes, bool) {
	a, ok := g.out[source][target]
	return a, ok
}

// ReplaceEdgeAttributes swaps the edge's attribute set for attrs.
func (g *Graph) ReplaceEdgeAttributes(source, target string, attrs Attributes) error {
	if !g.HasEdge(source, target) {
		return ErrUnknownEdge
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	g.out[source][target] = attrs
	g.emit(Event{Type: EdgeUpdated, Source: source, Target: target})
	return nil
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, k := range g.edgeOrder {
		out = append(out, Edge{Source: k.Source, Target: k.Target, Attributes: g.out[k.Source][k.Target]})
	}
	return out
}

// Size returns the number of edges.
func (g *Graph) Size() int { return len(g.edgeOrder) }

// OutNeighbors returns the targets of source's outgoing edges in edge insertion order.
func (g *Graph) OutNeighbors(source string) []string {
	var out []string
	for _, k := range g.edgeOrder {
		if k.Source == source {
			out = append(out, k.Target)
		}
	}
	return out
}

// InNeighbors returns the sources of target's incoming edges in edge insertion order.
func (g *Graph) InNeighbors(target string) []string {
	var out []string
	for _, k := range g.edgeOrder {
		if k.Target == target {
			out = append(out, k.Source)
		}
	}
	return out
}

// Neighbors returns every node adjacent to key regardless of direction,
// without duplicates.
func (g *Graph) Neighbors(key string) []string {
	seen := map[string]bool{}
	var out []string
	for _, k := range g.edgeOrder {
		var other string
		switch key {
		case k.Source:
			other = k.Target
		case k.Target:
			other = k.Source
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// OutDegree returns the number of outgoing edges. Returns 0 for unknown nodes.
func (g *Graph) OutDegree(key string) int { return len(g.out[key]) }

// InDegree returns the number of incoming edges. Returns 0 for unknown nodes.
func (g *Graph) InDegree(key string) int { return len(g.in[key]) }

// Degree returns InDegree + OutDegree.
func (g *Graph) Degree(key string) int { return g.InDegree(key) + g.OutDegree(key) }

// =============================================================================
// Whole-graph operations
// =============================================================================

// Clear removes every node and edge. Listeners stay registered.
func (g *Graph) Clear() {
	g.nodes = make(map[string]Attributes)
	g.nodeOrder = nil
	g.out = make(map[string]map[string]Attributes)
	g.in = make(map[string]map[string]struct{})
	g.edgeOrder = nil
	g.attrs = nil
	g.emit(Event{Type: Cleared})
}

// Attributes returns a copy of the graph-level attributes.
func (g *Graph) Attributes() Attributes { return g.attrs.Clone() }

// SetAttribute sets a graph-level attribute. A nil value removes it.
// Graph-level attributes never emit events.
func (g *Graph) SetAttribute(key string, v any) {
	if v == nil {
		delete(g.attrs, key)
		return
	}
	if g.attrs == nil {
		g.attrs = Attributes{}
	}
	g.attrs[key] = v
}

// Clone returns a deep copy of the graph without listeners.
func (g *Graph) Clone() *Graph {
	c := New()
	c.attrs = g.attrs.Clone()
	for _, k := range g.nodeOrder {
		c.nodes[k] = g.nodes[k].Clone()
		c.nodeOrder = append(c.nodeOrder, k)
	}
	for _, k := range g.edgeOrder {
		if c.out[k.Source] == nil {
			c.out[k.Source] = make(map[string]Attributes)
		}
		if c.in[k.Target] == nil {
			c.in[k.Target] = make(map[string]struct{})
		}
		c.out[k.Source][k.Target] = g.out[k.Source][k.Target].Clone()
		c.in[k.Target][k.Source] = struct{}{}
		c.edgeOrder = append(c.edgeOrder, k)
	}
	return c
}

// Quietly runs fn with event delivery suspended. Used for bookkeeping
// updates that must not look like edits to listeners.
func (g *Graph) Quietly(fn func()) {
	g.silent++
	defer func() { g.silent-- }()
	fn()
}
