package check

import (
	"reflect"
	"testing"

	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

func build(t *testing.T, nodes []string, edges ...[3]string) *simgraph.Graph {
	t.Helper()
	g := simgraph.New()
	for _, n := range nodes {
		if err := g.AddNode(n, nil); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		attrs := simgraph.Attributes{}
		if e[2] != "" {
			attrs[simgraph.AttrEdgeType] = e[2]
		}
		if err := g.AddEdge(e[0], e[1], attrs); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func chain(t *testing.T) *simgraph.Graph {
	return build(t, []string{"A", "B", "C"}, [3]string{"A", "B", ""}, [3]string{"B", "C", ""})
}

func TestWouldCreateCycle(t *testing.T) {
	tests := []struct {
		name     string
		src, dst string
		want     bool
	}{
		{"closing edge", "C", "A", true},
		{"new node", "A", "D", false},
		{"self loop", "B", "B", true},
		{"shortcut", "A", "C", false},
		{"reverse existing", "B", "A", false},
		{"reverse into chain", "C", "B", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chain(t)
			if got := WouldCreateCycle(g, tt.src, tt.dst); got != tt.want {
				t.Errorf("WouldCreateCycle(%s, %s) = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
			if g.Size() != 2 || g.HasNode("D") {
				t.Error("WouldCreateCycle() modified the graph")
			}
		})
	}
}

func TestWouldCreateCycleEffectiveDirection(t *testing.T) {
	// Stored B -> A and C -> B as backwards edges: A points at B, B at C.
	g := build(t, []string{"A", "B", "C"},
		[3]string{"B", "A", "backwards_directed"},
		[3]string{"C", "B", "backwards_directed"},
	)
	if !WouldCreateCycle(g, "C", "A") {
		t.Error("WouldCreateCycle(C, A) = false, want true")
	}

	u := build(t, []string{"A", "B", "C"},
		[3]string{"A", "B", "undirected"},
		[3]string{"B", "C", "undirected"},
	)
	if WouldCreateCycle(u, "C", "A") {
		t.Error("WouldCreateCycle(C, A) = true, want false for undirected edges")
	}
}

// Property: on an acyclic graph, adding a → b closes a cycle iff b reaches a.
func TestWouldCreateCycleMatchesReachability(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e"},
		[3]string{"a", "b", ""}, [3]string{"a", "c", ""},
		[3]string{"b", "d", ""}, [3]string{"c", "d", ""},
	)
	reach := func(from, to string) bool {
		seen := map[string]bool{}
		var walk func(string) bool
		walk = func(n string) bool {
			if n == to {
				return true
			}
			if seen[n] {
				return false
			}
			seen[n] = true
			for _, m := range g.OutNeighbors(n) {
				if walk(m) {
					return true
				}
			}
			return false
		}
		return walk(from)
	}
	for _, a := range g.Nodes() {
		for _, b := range g.Nodes() {
			if a == b || g.HasEdge(a, b) || g.HasEdge(b, a) {
				continue
			}
			if got, want := WouldCreateCycle(g, a, b), reach(b, a); got != want {
				t.Errorf("WouldCreateCycle(%s, %s) = %v, want %v", a, b, got, want)
			}
		}
	}
}

func TestIsDAG(t *testing.T) {
	tests := []struct {
		name  string
		edges [][3]string
		want  bool
	}{
		{"empty", nil, true},
		{"chain", [][3]string{{"A", "B", ""}, {"B", "C", "directed"}}, true},
		{"cycle", [][3]string{{"A", "B", ""}, {"B", "C", ""}, {"C", "A", ""}}, false},
		{"undirected", [][3]string{{"A", "B", "undirected"}}, false},
		{"backwards", [][3]string{{"A", "B", "backwards_directed"}}, false},
		{"self loop", [][3]string{{"A", "A", ""}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, []string{"A", "B", "C"}, tt.edges...)
			if got := IsDAG(g); got != tt.want {
				t.Errorf("IsDAG() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCyclicComponents(t *testing.T) {
	g := build(t, []string{"A", "B", "C", "D"},
		[3]string{"A", "B", ""}, [3]string{"B", "A", ""}, [3]string{"C", "D", ""},
	)
	got := CyclicComponents(g)
	want := [][]string{{"A", "B"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CyclicComponents() = %v, want %v", got, want)
	}
}

func TestEffectiveEdges(t *testing.T) {
	g := build(t, []string{"A", "B", "C"},
		[3]string{"A", "B", "backwards_directed"}, [3]string{"B", "C", "undirected"}, [3]string{"A", "C", ""},
	)
	want := []simgraph.EdgeKey{{Source: "B", Target: "A"}, {Source: "A", Target: "C"}}
	if got := EffectiveEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("EffectiveEdges() = %v, want %v", got, want)
	}
}
