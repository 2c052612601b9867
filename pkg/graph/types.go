package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// RenderingPropertiesKey is the meta key holding rendering hints.
const RenderingPropertiesKey = "rendering_properties"

// Rendering property keys the engine interprets.
const (
	PropX      = "x"
	PropY      = "y"
	PropLatent = "latent"
	PropForced = "forced"
	PropLabel  = "label"
)

// TimeSeriesNodeClass is the node class of time-series nodes. When every node
// of a graph has this class, nodes sharing a variable_name are grouped.
const TimeSeriesNodeClass = "TimeSeriesNode"

// VariableNameKey is the extras key naming a time-series node's variable.
const VariableNameKey = "variable_name"

// =============================================================================
// EdgeType
// =============================================================================

// EdgeType is the orientation of an edge.
type EdgeType string

const (
	// EdgeDirected is a plain source → destination edge.
	EdgeDirected EdgeType = "directed"
	// EdgeBackwardsDirected is an internal-only marker for an edge stored
	// source → destination whose arrow points destination → source. It never
	// leaves the engine: serialization flips it to EdgeDirected.
	EdgeBackwardsDirected EdgeType = "backwards_directed"
	// EdgeUndirected has no direction.
	EdgeUndirected EdgeType = "undirected"
)

// ParseEdgeType accepts the long names and the arrow shorthands
// ("->", "<-", "--"). The empty string decodes to EdgeDirected.
func ParseEdgeType(s string) (EdgeType, error) {
	switch s {
	case "", string(EdgeDirected), "->":
		return EdgeDirected, nil
	case string(EdgeBackwardsDirected), "<-":
		return EdgeBackwardsDirected, nil
	case string(EdgeUndirected), "--":
		return EdgeUndirected, nil
	}
	return "", fmt.Errorf("unknown edge type %q", s)
}

// IsDirected reports whether the edge has a direction (either orientation).
func (t EdgeType) IsDirected() bool {
	return t == EdgeDirected || t == EdgeBackwardsDirected
}

// UnmarshalJSON accepts any spelling understood by ParseEdgeType.
func (t *EdgeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseEdgeType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// =============================================================================
// Meta
// =============================================================================

// Meta is the free-form metadata attached to nodes and edges.
type Meta map[string]any

// RenderingProperties returns the rendering_properties sub-object, or nil.
func (m Meta) RenderingProperties() map[string]any {
	if m == nil {
		return nil
	}
	rp, _ := m[RenderingPropertiesKey].(map[string]any)
	return rp
}

// =============================================================================
// Graph
// =============================================================================

// Graph is the declarative causal graph exchanged with callers.
type Graph struct {
	Version string                     `json:"version,omitempty" bson:"version,omitempty"`
	Nodes   map[string]Node            `json:"nodes" bson:"nodes"`
	Edges   map[string]map[string]Edge `json:"edges" bson:"edges"`
}

// New returns an empty graph with initialised maps.
func New() Graph {
	return Graph{
		Nodes: map[string]Node{},
		Edges: map[string]map[string]Edge{},
	}
}

// NodeIDs returns node identifiers in sorted order.
func (g Graph) NodeIDs() []string {
	return slices.Sorted(maps.Keys(g.Nodes))
}

// EdgeList returns all edges ordered by source then destination.
func (g Graph) EdgeList() []Edge {
	var out []Edge
	for _, src := range slices.Sorted(maps.Keys(g.Edges)) {
		targets := g.Edges[src]
		for _, dst := range slices.Sorted(maps.Keys(targets)) {
			e := targets[dst]
			if e.Source == "" {
				e.Source = src
			}
			if e.Destination == "" {
				e.Destination = dst
			}
			out = append(out, e)
		}
	}
	return out
}

// Edge returns the edge stored at edges[src][dst].
func (g Graph) Edge(src, dst string) (Edge, bool) {
	e, ok := g.Edges[src][dst]
	return e, ok
}

// SetEdge stores e at edges[e.Source][e.Destination], creating maps as needed.
func (g *Graph) SetEdge(e Edge) {
	if g.Edges == nil {
		g.Edges = map[string]map[string]Edge{}
	}
	if g.Edges[e.Source] == nil {
		g.Edges[e.Source] = map[string]Edge{}
	}
	g.Edges[e.Source][e.Destination] = e
}

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.Edges {
		n += len(targets)
	}
	return n
}

// Validate checks that every edge references declared nodes.
func (g Graph) Validate() error {
	for src, targets := range g.Edges {
		if _, ok := g.Nodes[src]; !ok {
			return fmt.Errorf("edge source %q is not a node", src)
		}
		for dst := range targets {
			if _, ok := g.Nodes[dst]; !ok {
				return fmt.Errorf("edge %q -> %q: destination is not a node", src, dst)
			}
		}
	}
	return nil
}

// =============================================================================
// Node
// =============================================================================

// Node is a declarative graph node.
type Node struct {
	Identifier string         `json:"identifier" bson:"identifier"`
	NodeClass  string         `json:"node_class,omitempty" bson:"node_class,omitempty"`
	Meta       Meta           `json:"meta,omitempty" bson:"meta,omitempty"`
	Extras     map[string]any `json:"-" bson:",inline"`
}

var nodeFields = []string{"identifier", "node_class", "meta"}

// MarshalJSON writes the known fields and merges Extras at the top level.
func (n Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Extras)+3)
	for k, v := range n.Extras {
		out[k] = v
	}
	out["identifier"] = n.Identifier
	if n.NodeClass != "" {
		out["node_class"] = n.NodeClass
	}
	if n.Meta != nil {
		out["meta"] = n.Meta
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps everything else in Extras.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extras, err := extraFields(data, nodeFields)
	if err != nil {
		return err
	}
	p.Extras = extras
	*n = Node(p)
	return nil
}

// Label returns the rendering label, falling back to the identifier.
func (n Node) Label() string {
	if s, ok := n.Meta.RenderingProperties()[PropLabel].(string); ok && s != "" {
		return s
	}
	return n.Identifier
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a declarative graph edge.
type Edge struct {
	Source      string         `json:"source" bson:"source"`
	Destination string         `json:"destination" bson:"destination"`
	EdgeType    EdgeType       `json:"edge_type,omitempty" bson:"edge_type,omitempty"`
	Meta        Meta           `json:"meta,omitempty" bson:"meta,omitempty"`
	Extras      map[string]any `json:"-" bson:",inline"`
}

var edgeFields = []string{"source", "destination", "edge_type", "meta"}

// MarshalJSON writes the known fields and merges Extras at the top level.
func (e Edge) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extras)+4)
	for k, v := range e.Extras {
		out[k] = v
	}
	out["source"] = e.Source
	out["destination"] = e.Destination
	if e.EdgeType != "" {
		out["edge_type"] = string(e.EdgeType)
	}
	if e.Meta != nil {
		out["meta"] = e.Meta
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps everything else in Extras.
func (e *Edge) UnmarshalJSON(data []byte) error {
	type plain Edge
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extras, err := extraFields(data, edgeFields)
	if err != nil {
		return err
	}
	p.Extras = extras
	if p.EdgeType == "" {
		p.EdgeType = EdgeDirected
	}
	*e = Edge(p)
	return nil
}

// extraFields decodes data as an object and returns the keys not in known.
// Returns nil when there are no extra keys.
func extraFields(data []byte, known []string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}
