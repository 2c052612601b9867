package planar

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

func newGraph(t *testing.T, nodes []string, edges [][2]string) *simgraph.Graph {
	t.Helper()
	g := simgraph.New()
	for _, id := range nodes {
		if err := g.AddNode(id, nil); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1], nil); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func apply(t *testing.T, p layout.PlanarParams, g *simgraph.Graph) *layout.Result {
	t.Helper()
	res, err := New(p).Apply(context.Background(), g, nil)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	return res
}

func TestApplyEmpty(t *testing.T) {
	res := apply(t, layout.NewPlanarParams(), simgraph.New())
	if len(res.Layout) != 0 || len(res.EdgePoints) != 0 {
		t.Errorf("Apply(empty) = %+v, want empty", res)
	}
}

func TestApplyChain(t *testing.T) {
	for _, layering := range []layout.Layering{layout.LayeringLongestPath, layout.LayeringSimplex} {
		t.Run(string(layering), func(t *testing.T) {
			p := layout.NewPlanarParams()
			p.Layering = layering
			g := newGraph(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"A", "C"}})
			res := apply(t, p, g)
			l := res.Layout
			if !(l["A"].Y < l["B"].Y && l["B"].Y < l["C"].Y) {
				t.Errorf("layers not descending: %v", l)
			}
			if got := l["B"].Y - l["A"].Y; got != p.TierSeparation {
				t.Errorf("layer distance = %v, want %v", got, p.TierSeparation)
			}
			if pts := res.EdgePoints["A||C"]; len(pts) != 3 {
				t.Errorf("A||C has %d points, want 3 (one bend)", len(pts))
			}
			for key, pts := range res.EdgePoints {
				e := parseKey(key)
				if pts[0] != l[e.Source] || pts[len(pts)-1] != l[e.Target] {
					t.Errorf("%s polyline %v does not run source to target", key, pts)
				}
			}
		})
	}
}

func parseKey(key string) simgraph.EdgeKey {
	for i := 0; i+1 < len(key); i++ {
		if key[i:i+2] == "||" {
			return simgraph.EdgeKey{Source: key[:i], Target: key[i+2:]}
		}
	}
	return simgraph.EdgeKey{}
}

func TestApplyBackwardsEdge(t *testing.T) {
	g := newGraph(t, []string{"A", "B"}, nil)
	// Stored B → A, meaning A → B.
	if err := g.AddEdge("B", "A", simgraph.Attributes{simgraph.AttrEdgeType: string(graph.EdgeBackwardsDirected)}); err != nil {
		t.Fatal(err)
	}
	res := apply(t, layout.NewPlanarParams(), g)
	if res.Layout["A"].Y >= res.Layout["B"].Y {
		t.Errorf("A should be above B: %v", res.Layout)
	}
	pts := res.EdgePoints["B||A"]
	if len(pts) != 2 || pts[0] != res.Layout["B"] || pts[1] != res.Layout["A"] {
		t.Errorf("B||A = %v, want B then A", pts)
	}
}

func TestApplyCycle(t *testing.T) {
	g := newGraph(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})
	res := apply(t, layout.NewPlanarParams(), g)
	if len(res.Layout) != 3 || len(res.EdgePoints) != 3 {
		t.Fatalf("Apply(cycle) = %+v", res)
	}
	pts := res.EdgePoints["C||A"]
	if pts[0] != res.Layout["C"] || pts[len(pts)-1] != res.Layout["A"] {
		t.Errorf("reversed edge C||A = %v, want to start at C", pts)
	}
}

func TestApplySelfLoop(t *testing.T) {
	g := newGraph(t, []string{"A"}, [][2]string{{"A", "A"}})
	res := apply(t, layout.NewPlanarParams(), g)
	if pts := res.EdgePoints["A||A"]; len(pts) != 2 || pts[0] != res.Layout["A"] {
		t.Errorf("A||A = %v", pts)
	}
}

func TestApplySeparation(t *testing.T) {
	nodes := []string{"r", "a", "b", "c", "d"}
	edges := [][2]string{{"r", "a"}, {"r", "b"}, {"r", "c"}, {"r", "d"}}
	p := layout.NewPlanarParams()
	res := apply(t, p, newGraph(t, nodes, edges))
	row := []string{"a", "b", "c", "d"}
	for i := range row {
		for j := i + 1; j < len(row); j++ {
			if d := math.Abs(res.Layout[row[i]].X - res.Layout[row[j]].X); d < p.NodeSeparation-1e-6 {
				t.Errorf("%s and %s only %.2f apart", row[i], row[j], d)
			}
		}
	}
}

func TestApplyDecross(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "d"}, {"b", "c"}})
	res := apply(t, layout.NewPlanarParams(), g)
	l := res.Layout
	if (l["a"].X < l["b"].X) != (l["d"].X < l["c"].X) {
		t.Errorf("edges cross: %v", l)
	}
}

func TestApplyTiers(t *testing.T) {
	g := newGraph(t, []string{"A", "B", "C", "D"}, [][2]string{{"A", "C"}, {"B", "D"}})
	p := layout.NewPlanarParams()
	p.Tiers = tiers.Explicit([]string{"C", "D"}, []string{"A", "B"})
	res := apply(t, p, g)
	l := res.Layout
	if l["C"].Y != l["D"].Y || l["A"].Y != l["B"].Y {
		t.Errorf("tier members not on one layer: %v", l)
	}
	if l["C"].Y >= l["A"].Y {
		t.Errorf("first tier should be above the second: %v", l)
	}
	pts := res.EdgePoints["A||C"]
	if pts[0] != l["A"] || pts[len(pts)-1] != l["C"] {
		t.Errorf("A||C = %v, want to start at A", pts)
	}
}

func TestApplyTierOrder(t *testing.T) {
	g := simgraph.New()
	for id, pos := range map[string]float64{"x": 2, "y": 1, "z": 3} {
		_ = g.AddNode(id, simgraph.Attributes{simgraph.AttrExtras: map[string]any{"team": "t", "pos": pos}})
	}
	p := layout.NewPlanarParams()
	p.Tiers = tiers.Spec{Descriptor: &tiers.Descriptor{Group: "team", OrderNodesBy: "pos"}}
	l := apply(t, p, g).Layout
	if !(l["y"].X < l["x"].X && l["x"].X < l["z"].X) {
		t.Errorf("tier not in pos order: %v", l)
	}
}

func TestApplyInvalidTiers(t *testing.T) {
	g := newGraph(t, []string{"A"}, nil)
	p := layout.NewPlanarParams()
	p.Tiers = tiers.ByGroup("team", "missing")
	if _, err := New(p).Apply(context.Background(), g, nil); !errs.Is(err, errs.ErrCodeInvalidTiers) {
		t.Errorf("Apply() error = %v, want INVALID_TIERS", err)
	}
}

func TestApplyHorizontal(t *testing.T) {
	p := layout.NewPlanarParams()
	p.Orientation = layout.Horizontal
	l := apply(t, p, newGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}})).Layout
	if l["B"].X-l["A"].X != p.TierSeparation || l["A"].Y != l["B"].Y {
		t.Errorf("horizontal layout = %v", l)
	}
}

func TestHooksRecompute(t *testing.T) {
	var ticks []layout.Update
	g := newGraph(t, []string{"A"}, nil)
	res, err := New(layout.NewPlanarParams()).Apply(context.Background(), g, func(u layout.Update) { ticks = append(ticks, u) })
	if err != nil {
		t.Fatal(err)
	}
	_ = g.AddNode("B", nil)
	_ = g.AddEdge("A", "B", nil)
	if err := res.Hooks.OnAddEdge(context.Background(), g.Export()); err != nil {
		t.Fatalf("OnAddEdge() error: %v", err)
	}
	if len(ticks) != 1 || len(ticks[0].Layout) != 2 || len(ticks[0].EdgePoints) != 1 {
		t.Errorf("ticks = %+v, want one full update", ticks)
	}
}

func TestNetworkSimplexTightens(t *testing.T) {
	// A → B → C → D with a shortcut E → D: E belongs right above D.
	edges := []rankEdge{
		{from: 0, to: 1, minlen: 1, weight: 1},
		{from: 1, to: 2, minlen: 1, weight: 1},
		{from: 2, to: 3, minlen: 1, weight: 1},
		{from: 4, to: 3, minlen: 1, weight: 1},
	}
	if got := longestPath(5, edges)[4]; got != 0 {
		t.Errorf("longestPath rank(E) = %d, want 0", got)
	}
	rank, err := networkSimplex(5, edges)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 2, 3, 2}; !slices.Equal(rank, want) {
		t.Errorf("networkSimplex = %v, want %v", rank, want)
	}
}

func TestNetworkSimplexProperty(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 11))
	for trial := range 50 {
		n := 3 + rnd.IntN(12)
		var edges []rankEdge
		for i := range n {
			for j := i + 1; j < n; j++ {
				if rnd.Float64() < 0.25 {
					edges = append(edges, rankEdge{from: i, to: j, minlen: 1, weight: 1})
				}
			}
		}
		rank, err := networkSimplex(n, edges)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		lp := longestPath(n, edges)
		var simplexSpan, lpSpan int
		for _, e := range edges {
			span := rank[e.to] - rank[e.from]
			if span < 1 {
				t.Fatalf("trial %d: edge %d->%d span %d", trial, e.from, e.to, span)
			}
			simplexSpan += span
			lpSpan += lp[e.to] - lp[e.from]
		}
		if simplexSpan > lpSpan {
			t.Errorf("trial %d: simplex span %d exceeds longest path %d", trial, simplexSpan, lpSpan)
		}
	}
}

func TestBreakCycles(t *testing.T) {
	links := []link{{from: 0, to: 1}, {from: 1, to: 2}, {from: 2, to: 0}, {from: 2, to: 3}}
	if n := breakCycles(4, links); n != 1 {
		t.Fatalf("breakCycles reversed %d links, want 1", n)
	}
	if !links[2].reversed || links[2].from != 0 || links[2].to != 2 {
		t.Errorf("back edge = %+v, want reversed 0 -> 2", links[2])
	}
}

func TestLayerCrossings(t *testing.T) {
	// Complete bipartite K(2,2) always has one crossing.
	lg := &layered{
		real:   4,
		layer:  []int{0, 0, 1, 1},
		down:   [][]int{{2, 3}, {2, 3}, nil, nil},
		up:     [][]int{nil, nil, {0, 1}, {0, 1}},
		layers: [][]int{{0, 1}, {2, 3}},
		pos:    []int{0, 1, 0, 1},
	}
	if got := lg.crossings(); got != 1 {
		t.Errorf("crossings(K2,2) = %d, want 1", got)
	}
}
