package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
	"version": "0.2",
	"nodes": {
		"a": {"identifier": "a", "node_class": "Node", "owner": "team-x",
			"meta": {"rendering_properties": {"label": "Alpha", "x": 10, "y": 20}}},
		"b": {"identifier": "b", "variable_name": "bee"}
	},
	"edges": {
		"a": {"b": {"source": "a", "destination": "b", "edge_type": "<-", "weight": 0.5}}
	}
}`

func TestUnmarshal(t *testing.T) {
	g, err := Unmarshal([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if g.Version != "0.2" {
		t.Errorf("Version = %q, want %q", g.Version, "0.2")
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(g.Nodes))
	}

	a := g.Nodes["a"]
	if a.NodeClass != "Node" {
		t.Errorf("NodeClass = %q, want %q", a.NodeClass, "Node")
	}
	if a.Extras["owner"] != "team-x" {
		t.Errorf("Extras[owner] = %v, want team-x", a.Extras["owner"])
	}
	if a.Label() != "Alpha" {
		t.Errorf("Label() = %q, want Alpha", a.Label())
	}
	if g.Nodes["b"].Label() != "b" {
		t.Errorf("Label() fallback = %q, want b", g.Nodes["b"].Label())
	}

	e, ok := g.Edge("a", "b")
	if !ok {
		t.Fatal("Edge(a, b) not found")
	}
	if e.EdgeType != EdgeBackwardsDirected {
		t.Errorf("EdgeType = %q, want %q", e.EdgeType, EdgeBackwardsDirected)
	}
	if e.Extras["weight"] != 0.5 {
		t.Errorf("Extras[weight] = %v, want 0.5", e.Extras["weight"])
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	g, err := Unmarshal([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"owner": "team-x"`) {
		t.Errorf("node extras not written at top level:\n%s", data)
	}
	if !strings.Contains(string(data), `"edge_type": "backwards_directed"`) {
		t.Errorf("edge type not normalised to long name:\n%s", data)
	}

	again, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal(Marshal()) error = %v", err)
	}
	if again.Nodes["b"].Extras["variable_name"] != "bee" {
		t.Errorf("extras lost in round-trip: %v", again.Nodes["b"].Extras)
	}
}

func TestUnmarshalFillsKeys(t *testing.T) {
	g, err := Unmarshal([]byte(`{"nodes": {"a": {}, "b": {}}, "edges": {"a": {"b": {}}}}`))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if g.Nodes["a"].Identifier != "a" {
		t.Errorf("Identifier = %q, want a", g.Nodes["a"].Identifier)
	}
	e := g.Edges["a"]["b"]
	if e.Source != "a" || e.Destination != "b" {
		t.Errorf("edge endpoints = %q -> %q, want a -> b", e.Source, e.Destination)
	}
	if e.EdgeType != EdgeDirected {
		t.Errorf("EdgeType = %q, want %q", e.EdgeType, EdgeDirected)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"nodes": [}`},
		{"unknown source", `{"nodes": {"a": {}}, "edges": {"x": {"a": {}}}}`},
		{"unknown destination", `{"nodes": {"a": {}}, "edges": {"a": {"x": {}}}}`},
		{"bad edge type", `{"nodes": {"a": {}, "b": {}}, "edges": {"a": {"b": {"edge_type": "sideways"}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); err == nil {
				t.Error("Unmarshal() error = nil, want error")
			}
		})
	}
}

func TestParseEdgeType(t *testing.T) {
	tests := []struct {
		in   string
		want EdgeType
	}{
		{"", EdgeDirected},
		{"->", EdgeDirected},
		{"directed", EdgeDirected},
		{"<-", EdgeBackwardsDirected},
		{"backwards_directed", EdgeBackwardsDirected},
		{"--", EdgeUndirected},
		{"undirected", EdgeUndirected},
	}
	for _, tt := range tests {
		got, err := ParseEdgeType(tt.in)
		if err != nil {
			t.Errorf("ParseEdgeType(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEdgeType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	g := New()
	g.Nodes["x"] = Node{Identifier: "x"}
	g.Nodes["y"] = Node{Identifier: "y"}
	g.SetEdge(Edge{Source: "x", Destination: "y", EdgeType: EdgeDirected})

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got.EdgeCount())
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile(missing) error = nil, want error")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Stat() error = %v", err)
	}
}

func TestEdgeList(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.Nodes[id] = Node{Identifier: id}
	}
	g.SetEdge(Edge{Source: "b", Destination: "c"})
	g.SetEdge(Edge{Source: "a", Destination: "c"})
	g.SetEdge(Edge{Source: "a", Destination: "b"})

	edges := g.EdgeList()
	want := [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	if len(edges) != len(want) {
		t.Fatalf("len(EdgeList()) = %d, want %d", len(edges), len(want))
	}
	for i, e := range edges {
		if e.Source != want[i][0] || e.Destination != want[i][1] {
			t.Errorf("EdgeList()[%d] = %s->%s, want %s->%s", i, e.Source, e.Destination, want[i][0], want[i][1])
		}
	}
}
