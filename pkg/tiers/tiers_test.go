package tiers

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

func teams(t *testing.T) *simgraph.Graph {
	t.Helper()
	g := simgraph.New()
	add := func(id string, attrs simgraph.Attributes) {
		if err := g.AddNode(id, attrs); err != nil {
			t.Fatal(err)
		}
	}
	add("a", simgraph.Attributes{simgraph.AttrExtras: map[string]any{"team": "core", "pos": 2.0}})
	add("b", simgraph.Attributes{simgraph.AttrExtras: map[string]any{"team": "edge", "pos": 1.0}})
	add("c", simgraph.Attributes{simgraph.AttrExtras: map[string]any{"team": "core", "pos": "x"}})
	add("d", simgraph.Attributes{simgraph.AttrOriginalMeta: map[string]any{"level": 3.0}})
	return g
}

func TestSpecUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Spec
	}{
		{"null", `null`, Spec{}},
		{"explicit", `[["a","b"],["c"]]`, Explicit([]string{"a", "b"}, []string{"c"})},
		{"descriptor", `{"group":"team","rank":["core"],"order_nodes_by":"pos"}`,
			Spec{Descriptor: &Descriptor{Group: "team", Rank: []string{"core"}, OrderNodesBy: "pos"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Spec
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}

	var s Spec
	if err := json.Unmarshal([]byte(`"core"`), &s); err == nil {
		t.Error("Unmarshal(string) succeeded, want error")
	}
	if err := json.Unmarshal([]byte(`{"rank":["x"]}`), &s); err == nil {
		t.Error("Unmarshal(descriptor without group) succeeded, want error")
	}
}

func TestLookup(t *testing.T) {
	attrs := simgraph.Attributes{
		"meta.rendering_properties.label": "L",
		simgraph.AttrExtras:               map[string]any{"team": "core", "nested": map[string]any{"k": "v"}},
		simgraph.AttrOriginalMeta:         map[string]any{"owner": "ops"},
	}
	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"meta.rendering_properties.label", "L", true},
		{"extras.team", "core", true},
		{"team", "core", true},
		{"nested.k", "v", true},
		{"meta.owner", "ops", true},
		{"owner", "ops", true},
		{"missing", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := Lookup(attrs, tt.path)
		if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Lookup(%q) = (%v, %v), want (%v, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveExplicitFilters(t *testing.T) {
	g := teams(t)
	got, err := Resolve(Explicit([]string{"a", "ghost"}, []string{"ghost"}, []string{"b", "c"}), g)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := [][]string{{"a"}, {"b", "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolveDescriptor(t *testing.T) {
	g := teams(t)
	got, err := Resolve(ByGroup("team"), g)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := [][]string{{"a", "c"}, {"b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}

	got, err = Resolve(ByGroup("team", "edge", "core"), g)
	if err != nil {
		t.Fatalf("Resolve(rank) error: %v", err)
	}
	want = [][]string{{"b"}, {"a", "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve(rank) = %v, want %v", got, want)
	}
}

func TestResolveRankGap(t *testing.T) {
	g := teams(t)
	_, err := Resolve(ByGroup("team", "core", "infra", "data"), g)
	if !errs.Is(err, errs.ErrCodeInvalidTiers) {
		t.Fatalf("Resolve() error = %v, want INVALID_TIERS", err)
	}
	for _, name := range []string{"infra", "data"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %q", err, name)
		}
	}
}

func TestGroups(t *testing.T) {
	g := teams(t)
	gr := Groups(g.Nodes(), "team", g)
	if !reflect.DeepEqual(gr.Keys, []string{"core", "edge"}) {
		t.Errorf("Keys = %v, want [core edge]", gr.Keys)
	}
	if gr.ByNode["c"] != "core" {
		t.Errorf("ByNode[c] = %q, want core", gr.ByNode["c"])
	}
	if _, ok := gr.ByNode["d"]; ok {
		t.Error("node without a value was grouped")
	}

	levels := Groups(g.Nodes(), "meta.level", g)
	if !reflect.DeepEqual(levels.Members, map[string][]string{"3": {"d"}}) {
		t.Errorf("Members = %v, want 3: [d]", levels.Members)
	}
}

func TestOrderInts(t *testing.T) {
	g := teams(t)
	order := Order([]string{"a", "b"}, "pos", g)
	got, err := OrderInts(order)
	if err != nil {
		t.Fatalf("OrderInts() error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]int{"a": 2, "b": 1}) {
		t.Errorf("OrderInts() = %v", got)
	}

	_, err = OrderInts(Order(g.Nodes(), "pos", g))
	if !errs.Is(err, errs.ErrCodeInvalidOrder) {
		t.Errorf("OrderInts(non-numeric) error = %v, want INVALID_ORDER", err)
	}
}

func TestIndex(t *testing.T) {
	got := Index([][]string{{"a"}, {"b", "c"}})
	if got["a"] != 0 || got["c"] != 1 {
		t.Errorf("Index() = %v", got)
	}
}
