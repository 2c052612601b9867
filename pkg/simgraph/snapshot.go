package simgraph

import "encoding/json"

// NodeEntry is a node in a Snapshot.
type NodeEntry struct {
	Key        string     `json:"key"`
	Attributes Attributes `json:"attributes"`
}

// EdgeEntry is an edge in a Snapshot.
type EdgeEntry struct {
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Attributes Attributes `json:"attributes"`
}

// Snapshot is a self-contained, JSON-serialisable copy of a graph. It is the
// only form in which a graph crosses the host/worker boundary.
type Snapshot struct {
	Attributes Attributes  `json:"attributes,omitempty"`
	Nodes      []NodeEntry `json:"nodes"`
	Edges      []EdgeEntry `json:"edges"`
}

// Export returns a deep copy of the graph as a Snapshot.
func (g *Graph) Export() Snapshot {
	s := Snapshot{
		Attributes: g.attrs.Clone(),
		Nodes:      make([]NodeEntry, 0, len(g.nodeOrder)),
		Edges:      make([]EdgeEntry, 0, len(g.edgeOrder)),
	}
	for _, k := range g.nodeOrder {
		s.Nodes = append(s.Nodes, NodeEntry{Key: k, Attributes: g.nodes[k].Clone()})
	}
	for _, k := range g.edgeOrder {
		s.Edges = append(s.Edges, EdgeEntry{Source: k.Source, Target: k.Target, Attributes: g.out[k.Source][k.Target].Clone()})
	}
	return s
}

// Import replaces the graph's contents with the snapshot. Listeners receive
// a single Cleared event followed by one event per added node and edge.
func (g *Graph) Import(s Snapshot) error {
	g.Clear()
	g.attrs = s.Attributes.Clone()
	for _, n := range s.Nodes {
		if err := g.AddNode(n.Key, n.Attributes.Clone()); err != nil {
			return err
		}
	}
	for _, e := range s.Edges {
		if err := g.AddEdge(e.Source, e.Target, e.Attributes.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// FromSnapshot builds a new graph from a snapshot.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	if err := g.Import(s); err != nil {
		return nil, err
	}
	return g, nil
}

// MarshalSnapshot encodes a snapshot as JSON.
func MarshalSnapshot(s Snapshot) ([]byte, error) { return json.Marshal(s) }

// UnmarshalSnapshot decodes a JSON snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(data, &s)
	return s, err
}
