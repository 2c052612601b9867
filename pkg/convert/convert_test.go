package convert

import (
	"reflect"
	"testing"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

func mustGraph(t *testing.T, s string) graph.Graph {
	t.Helper()
	g, err := graph.Unmarshal([]byte(s))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	return g
}

const twoNodes = `{
  "version": "1",
  "nodes": {
    "A": {"identifier": "A", "meta": {"rendering_properties": {"label": "a"}}},
    "B": {"identifier": "B", "meta": {"rendering_properties": {"label": "b"}}, "owner": "ops"}
  },
  "edges": {"A": {"B": {"source": "A", "destination": "B"}}}
}`

func recordEvents(g *simgraph.Graph) *[]simgraph.Event {
	var events []simgraph.Event
	g.OnMutated(func(e simgraph.Event) { events = append(events, e) })
	return &events
}

func TestParseFlattens(t *testing.T) {
	g, err := Parse(mustGraph(t, twoNodes))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	b, _ := g.NodeAttributes("B")
	if got := b[simgraph.Rendering("label")]; got != "b" {
		t.Errorf("label = %v, want b", got)
	}
	if got := b[simgraph.AttrExtras]; !reflect.DeepEqual(got, map[string]any{"owner": "ops"}) {
		t.Errorf("extras = %v, want owner=ops", got)
	}
	if got := b.Str(simgraph.AttrCategory); got != simgraph.CategoryTarget {
		t.Errorf("category(B) = %q, want target", got)
	}
	a, _ := g.NodeAttributes("A")
	if got := a.Str(simgraph.AttrCategory); got != simgraph.CategoryOther {
		t.Errorf("category(A) = %q, want other", got)
	}
	e, _ := g.EdgeAttributes("A", "B")
	if got := e.Str(simgraph.AttrEdgeType); got != "directed" {
		t.Errorf("edge_type = %q, want directed", got)
	}
}

func TestParseSeedsPositionFromHints(t *testing.T) {
	g, err := Parse(mustGraph(t, `{"nodes": {"A": {"meta": {"rendering_properties": {"x": 5, "y": 7}}}}, "edges": {}}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	a, _ := g.NodeAttributes("A")
	if x, y, ok := a.Position(); !ok || x != 5 || y != 7 {
		t.Errorf("Position() = (%v, %v, %v), want (5, 7, true)", x, y, ok)
	}
}

func TestDiffPreservesPosition(t *testing.T) {
	g, err := Parse(mustGraph(t, twoNodes))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	_ = g.SetPosition("A", 12, 34)
	_ = g.SetPosition("B", 1, 2)
	events := recordEvents(g)

	changed := mustGraph(t, twoNodes)
	b := changed.Nodes["B"]
	b.Meta = graph.Meta{"rendering_properties": map[string]any{"label": "renamed"}}
	changed.Nodes["B"] = b

	if _, err := Parse(changed, WithExisting(g)); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	a, _ := g.NodeAttributes("A")
	if x, y, _ := a.Position(); x != 12 || y != 34 {
		t.Errorf("A = (%v, %v), want (12, 34)", x, y)
	}
	battrs, _ := g.NodeAttributes("B")
	if got := battrs[simgraph.Rendering("label")]; got != "renamed" {
		t.Errorf("B label = %v, want renamed", got)
	}
	if x, y, _ := battrs.Position(); x != 1 || y != 2 {
		t.Errorf("B = (%v, %v), want (1, 2)", x, y)
	}
	want := []simgraph.Event{{Type: simgraph.NodeUpdated, Node: "B"}}
	if !reflect.DeepEqual(*events, want) {
		t.Errorf("events = %v, want %v", *events, want)
	}
}

func TestParseIdempotent(t *testing.T) {
	decl := mustGraph(t, twoNodes)
	g, _ := Parse(decl)
	_ = g.SetPosition("A", 3, 4)
	before := g.Export()
	events := recordEvents(g)

	if _, err := Parse(decl, WithExisting(g)); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(*events) != 0 {
		t.Errorf("events = %v, want none", *events)
	}
	if after := g.Export(); !reflect.DeepEqual(before, after) {
		t.Errorf("graph changed:\nbefore %v\nafter  %v", before, after)
	}
}

func TestParseHintChangeWins(t *testing.T) {
	src := `{"nodes": {"A": {"meta": {"rendering_properties": {"x": 1, "y": 1}}}}, "edges": {}}`
	g, _ := Parse(mustGraph(t, src))
	_ = g.SetPosition("A", 50, 60)

	moved := `{"nodes": {"A": {"meta": {"rendering_properties": {"x": 9, "y": 8}}}}, "edges": {}}`
	if _, err := Parse(mustGraph(t, moved), WithExisting(g)); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	a, _ := g.NodeAttributes("A")
	if x, y, _ := a.Position(); x != 9 || y != 8 {
		t.Errorf("A = (%v, %v), want (9, 8)", x, y)
	}
}

func TestParseExtrasOnlyChangeIsSilent(t *testing.T) {
	g, _ := Parse(mustGraph(t, twoNodes))
	events := recordEvents(g)

	changed := mustGraph(t, twoNodes)
	b := changed.Nodes["B"]
	b.Extras = map[string]any{"owner": "dev"}
	changed.Nodes["B"] = b

	if _, err := Parse(changed, WithExisting(g)); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(*events) != 0 {
		t.Errorf("events = %v, want none", *events)
	}
	battrs, _ := g.NodeAttributes("B")
	if got := battrs[simgraph.AttrExtras]; !reflect.DeepEqual(got, map[string]any{"owner": "dev"}) {
		t.Errorf("extras = %v, want owner=dev", got)
	}
}

func TestParseAddsAndDrops(t *testing.T) {
	g, _ := Parse(mustGraph(t, twoNodes))
	next := `{"nodes": {"A": {"meta": {"rendering_properties": {"label": "a"}}}, "C": {}}, "edges": {"A": {"C": {}}}}`
	if _, err := Parse(mustGraph(t, next), WithExisting(g)); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if g.HasNode("B") || !g.HasNode("C") {
		t.Errorf("Nodes() = %v, want [A C]", g.Nodes())
	}
	if g.HasEdge("A", "B") || !g.HasEdge("A", "C") {
		t.Errorf("edges not synced: %v", g.Edges())
	}
}

func TestParseLatent(t *testing.T) {
	src := `{"nodes": {"A": {}, "B": {}, "L": {}, "I": {}}, "edges": {"A": {"B": {}}}}`
	g, err := Parse(mustGraph(t, src), WithAvailableInputs([]string{"I"}))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	tests := []struct {
		id       string
		category string
	}{
		{"A", simgraph.CategoryOther},
		{"B", simgraph.CategoryTarget},
		{"L", simgraph.CategoryLatent},
		{"I", simgraph.CategoryOther},
	}
	for _, tt := range tests {
		attrs, _ := g.NodeAttributes(tt.id)
		if got := attrs.Str(simgraph.AttrCategory); got != tt.category {
			t.Errorf("category(%s) = %q, want %q", tt.id, got, tt.category)
		}
	}
}

func TestParseTimeSeries(t *testing.T) {
	src := `{"nodes": {
	  "a1": {"node_class": "TimeSeriesNode", "variable_name": "a"},
	  "a2": {"node_class": "TimeSeriesNode", "variable_name": "a"},
	  "b1": {"node_class": "TimeSeriesNode", "variable_name": "b"}
	}, "edges": {}}`
	g, err := Parse(mustGraph(t, src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	for id, want := range map[string]string{"a1": "a", "a2": "a", "b1": ""} {
		attrs, _ := g.NodeAttributes(id)
		if got := attrs.Str(simgraph.AttrTimeSeriesVariable); got != want {
			t.Errorf("time_series_variable(%s) = %q, want %q", id, got, want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	decl := graph.New()
	decl.Nodes["A"] = graph.Node{Identifier: "A"}
	decl.SetEdge(graph.Edge{Source: "A", Destination: "ghost"})
	if _, err := Parse(decl); !errs.Is(err, errs.ErrCodeInvalidGraph) {
		t.Errorf("Parse() error = %v, want INVALID_GRAPH", err)
	}
}

func TestBackwardsEdgeRoundTrip(t *testing.T) {
	src := `{"nodes": {"X": {}, "Y": {}}, "edges": {"X": {"Y": {"edge_type": "backwards_directed"}}}}`
	g, err := Parse(mustGraph(t, src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	out := Serialize(g)
	if _, ok := out.Edge("X", "Y"); ok {
		t.Error("edges[X][Y] still present")
	}
	e, ok := out.Edge("Y", "X")
	if !ok {
		t.Fatal("edges[Y][X] missing")
	}
	if e.Source != "Y" || e.Destination != "X" || e.EdgeType != graph.EdgeDirected {
		t.Errorf("edge = %s -> %s (%s), want Y -> X (directed)", e.Source, e.Destination, e.EdgeType)
	}
}

func TestRoundTripKeepsKeysAndExtras(t *testing.T) {
	src := `{"version": "2", "nodes": {
	  "A": {"node_class": "Variable", "meta": {"rendering_properties": {"label": "A"}, "notes": "n"}, "custom": [1, 2]},
	  "B": {}
	}, "edges": {"A": {"B": {"meta": {"weight": 0.5}, "strength": "high"}}}}`
	decl := mustGraph(t, src)
	g, err := Parse(decl)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	out := Serialize(g)

	if out.Version != "2" {
		t.Errorf("Version = %q, want %q", out.Version, "2")
	}
	if !reflect.DeepEqual(out.NodeIDs(), decl.NodeIDs()) {
		t.Errorf("NodeIDs() = %v, want %v", out.NodeIDs(), decl.NodeIDs())
	}
	a := out.Nodes["A"]
	if !reflect.DeepEqual(a.Extras, decl.Nodes["A"].Extras) {
		t.Errorf("A extras = %v, want %v", a.Extras, decl.Nodes["A"].Extras)
	}
	if a.NodeClass != "Variable" || a.Meta["notes"] != "n" || a.Label() != "A" {
		t.Errorf("A = %+v", a)
	}
	e, ok := out.Edge("A", "B")
	if !ok {
		t.Fatal("edge A -> B missing")
	}
	if !reflect.DeepEqual(e.Extras, map[string]any{"strength": "high"}) || e.Meta["weight"] != 0.5 {
		t.Errorf("edge = %+v", e)
	}
}

func TestSyncUpdatesVersion(t *testing.T) {
	g, err := Parse(mustGraph(t, `{"version": "1", "nodes": {"A": {}}, "edges": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(mustGraph(t, `{"version": "3", "nodes": {"A": {}}, "edges": {}}`), WithExisting(g)); err != nil {
		t.Fatal(err)
	}
	if got := Serialize(g).Version; got != "3" {
		t.Errorf("Version after sync = %q, want 3", got)
	}
	if got := Serialize(g.Clone()).Version; got != "3" {
		t.Errorf("Version of clone = %q, want 3", got)
	}
	if _, err := Parse(mustGraph(t, `{"nodes": {"A": {}}, "edges": {}}`), WithExisting(g)); err != nil {
		t.Fatal(err)
	}
	if got := Serialize(g).Version; got != "" {
		t.Errorf("Version after unversioned sync = %q, want empty", got)
	}
}

func TestSerializeWritesPositions(t *testing.T) {
	g, _ := Parse(mustGraph(t, `{"nodes": {"A": {}}, "edges": {}}`))
	_ = g.SetPosition("A", 3, 4)
	rp := Serialize(g).Nodes["A"].Meta.RenderingProperties()
	if rp["x"] != 3.0 || rp["y"] != 4.0 {
		t.Errorf("rendering_properties = %v, want x=3 y=4", rp)
	}
}
