package forceatlas2

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

func star(t *testing.T, leaves int) *simgraph.Graph {
	t.Helper()
	g := simgraph.New()
	_ = g.AddNode("hub", nil)
	for i := range leaves {
		id := string(rune('a' + i))
		if err := g.AddNode(id, nil); err != nil {
			t.Fatal(err)
		}
		if err := g.AddEdge("hub", id, nil); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestApplyEmpty(t *testing.T) {
	res, err := New(layout.NewForceAtlas2Params()).Apply(context.Background(), simgraph.New(), nil)
	if err != nil || len(res.Layout) != 0 {
		t.Errorf("Apply(empty) = %v, %v; want empty layout", res.Layout, err)
	}
}

func TestApplyDeterministic(t *testing.T) {
	for _, bh := range []bool{false, true} {
		p := layout.NewForceAtlas2Params()
		p.BarnesHutOptimize = bh
		a, err := New(p).Apply(context.Background(), star(t, 6), nil)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		b, _ := New(p).Apply(context.Background(), star(t, 6), nil)
		for id, pt := range a.Layout {
			if math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
				t.Fatalf("barnesHut=%v: node %s has NaN position", bh, id)
			}
			if b.Layout[id] != pt {
				t.Errorf("barnesHut=%v: node %s differs between runs: %v vs %v", bh, id, pt, b.Layout[id])
			}
		}
	}
}

func TestApplyKeepsLeavesApart(t *testing.T) {
	p := layout.NewForceAtlas2Params()
	p.Iterations = 300
	res, err := New(p).Apply(context.Background(), star(t, 5), nil)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	for a, pa := range res.Layout {
		for b, pb := range res.Layout {
			if a < b && pa.Dist(pb) < 1e-3 {
				t.Errorf("nodes %s and %s coincide", a, b)
			}
		}
	}
}

func TestApplyUsesExistingPositions(t *testing.T) {
	g := simgraph.New()
	_ = g.AddNode("a", simgraph.Attributes{"x": 0.0, "y": 0.0})
	_ = g.AddNode("b", simgraph.Attributes{"x": 100.0, "y": 0.0})
	p := layout.NewForceAtlas2Params()
	p.Iterations = 0
	res, _ := New(p).Apply(context.Background(), g, nil)
	if res.Layout["b"] != (layout.Point{X: 100}) {
		t.Errorf("Layout[b] = %v, want existing position", res.Layout["b"])
	}
}

func TestApplySeparatesNewNodes(t *testing.T) {
	build := func() *simgraph.Graph {
		g := simgraph.New()
		_ = g.AddNode("a", simgraph.Attributes{"x": 100.0, "y": 100.0})
		_ = g.AddNode("b", nil)
		_ = g.AddNode("c", nil)
		_ = g.AddEdge("a", "b", nil)
		_ = g.AddEdge("a", "c", nil)
		return g
	}
	for _, bh := range []bool{false, true} {
		p := layout.NewForceAtlas2Params()
		p.BarnesHutOptimize = bh
		res, err := New(p).Apply(context.Background(), build(), nil)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		b, c := res.Layout["b"], res.Layout["c"]
		if b.Dist(c) < 1e-3 {
			t.Errorf("barnesHut=%v: b=%v and c=%v were not separated", bh, b, c)
		}
		again, _ := New(p).Apply(context.Background(), build(), nil)
		if again.Layout["b"] != b || again.Layout["c"] != c {
			t.Errorf("barnesHut=%v: placement of new nodes is not deterministic", bh)
		}
	}
}

func TestApplyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(layout.NewForceAtlas2Params()).Apply(ctx, star(t, 2), nil); err == nil {
		t.Error("Apply() with cancelled context succeeded")
	}
}

func TestModes(t *testing.T) {
	tests := []struct {
		name string
		set  func(*layout.ForceAtlas2Params)
	}{
		{"linlog", func(p *layout.ForceAtlas2Params) { p.LinLogMode = true }},
		{"strong gravity", func(p *layout.ForceAtlas2Params) { p.StrongGravityMode = true }},
		{"outbound", func(p *layout.ForceAtlas2Params) { p.OutboundAttractionDistribution = true }},
		{"adjust sizes", func(p *layout.ForceAtlas2Params) { p.AdjustSizes = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := layout.NewForceAtlas2Params()
			tt.set(&p)
			res, err := New(p).Apply(context.Background(), star(t, 4), nil)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			for id, pt := range res.Layout {
				if math.IsNaN(pt.X) || math.IsInf(pt.X, 0) {
					t.Errorf("node %s = %v", id, pt)
				}
			}
		})
	}
}
