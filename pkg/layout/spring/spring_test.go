package spring

import (
	"context"
	"slices"
	"testing"
	"time"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

func params() layout.SpringParams {
	p := layout.NewSpringParams()
	p.TickIntervalMillis = 1
	p.DebounceMillis = 5
	return p
}

func triangle(t *testing.T) *simgraph.Graph {
	t.Helper()
	g := simgraph.New()
	for _, id := range []string{"a", "b", "c"} {
		team := "red"
		if id == "c" {
			team = "blue"
		}
		if err := g.AddNode(id, simgraph.Attributes{simgraph.AttrExtras: map[string]any{"team": team}}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}} {
		if err := g.AddEdge(e[0], e[1], nil); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

// ticks collects updates without blocking the simulation.
func ticks() (layout.TickFunc, <-chan layout.Update) {
	ch := make(chan layout.Update, 64)
	return func(u layout.Update) {
		select {
		case ch <- u:
		default:
		}
	}, ch
}

func start(t *testing.T, p layout.SpringParams, g *simgraph.Graph, tick layout.TickFunc) *Session {
	t.Helper()
	s, err := New(p).Start(context.Background(), g, tick)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestApplyStreamsTicks(t *testing.T) {
	tick, ch := ticks()
	res, err := New(params()).Apply(context.Background(), triangle(t), tick)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Hooks.OnCleanup()
	if len(res.Layout) != 3 {
		t.Errorf("initial layout has %d nodes, want 3", len(res.Layout))
	}
	for _, h := range []any{res.Hooks.OnStartDrag, res.Hooks.OnMove, res.Hooks.OnEndDrag, res.Hooks.OnAddNode, res.Hooks.OnAddEdge, res.Hooks.OnCleanup} {
		if h == nil {
			t.Fatal("missing hook")
		}
	}
	select {
	case u := <-ch:
		if len(u.Layout) != 3 {
			t.Errorf("tick has %d nodes, want 3", len(u.Layout))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tick within 2s")
	}
}

func TestApplyOutlivesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := New(params()).Start(ctx, triangle(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()
	cancel()
	time.Sleep(10 * time.Millisecond)
	if !s.Running() {
		t.Error("session stopped with its start context")
	}
}

func TestCleanupStops(t *testing.T) {
	s := start(t, params(), triangle(t), nil)
	s.Stop()
	if s.Running() {
		t.Error("Running() = true after Stop")
	}
	s.StartDrag()
	if s.Running() {
		t.Error("StartDrag restarted a stopped session")
	}
	s.Stop()
}

func TestMovePinsOneNode(t *testing.T) {
	s := start(t, params(), triangle(t), nil)
	s.StartDrag()
	if got := s.Simulation().AlphaTarget(); got != dragAlphaTarget {
		t.Errorf("AlphaTarget() = %v after StartDrag, want %v", got, dragAlphaTarget)
	}
	s.Move("a", layout.Point{X: 10, Y: 10})
	s.Move("b", layout.Point{X: 20, Y: 20})
	if got := s.Simulation().Pinned(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Pinned() = %v, want [b]", got)
	}
	s.Move("b", layout.Point{X: 25, Y: 25})
	if s.Pinned() != "b" {
		t.Errorf("Pinned() = %q, want b", s.Pinned())
	}
	s.EndDrag("b")
	if got := s.Simulation().Pinned(); len(got) != 0 || s.Pinned() != "" {
		t.Errorf("Pinned() = %v after EndDrag", got)
	}
	if got := s.Simulation().AlphaTarget(); got != 0 {
		t.Errorf("AlphaTarget() = %v after EndDrag, want 0", got)
	}
}

func TestMoveUnknownNode(t *testing.T) {
	s := start(t, params(), triangle(t), nil)
	s.Move("a", layout.Point{})
	s.Move("ghost", layout.Point{})
	if got := s.Simulation().Pinned(); len(got) != 0 {
		t.Errorf("Pinned() = %v, want none", got)
	}
}

func TestReimportAddsNodes(t *testing.T) {
	g := triangle(t)
	s := start(t, params(), g, nil)
	before := s.Positions()["a"]

	_ = g.AddNode("d", nil)
	_ = g.AddEdge("c", "d", nil)
	if err := s.Hooks().OnAddNode(context.Background(), g.Export()); err != nil {
		t.Fatal(err)
	}
	if err := s.Hooks().OnAddEdge(context.Background(), g.Export()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		pos := s.Positions()
		if _, ok := pos["d"]; ok {
			if pos["a"].Dist(before) > 1000 {
				t.Errorf("a jumped from %v to %v", before, pos["a"])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("d never appeared")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !s.Running() {
		t.Error("session not running after re-import")
	}
}

func TestSessionsIndependent(t *testing.T) {
	a := start(t, params(), triangle(t), nil)
	b := start(t, params(), triangle(t), nil)
	a.Move("a", layout.Point{X: 1, Y: 1})
	if got := b.Simulation().Pinned(); len(got) != 0 {
		t.Errorf("pin leaked across sessions: %v", got)
	}
	a.Stop()
	if !b.Running() {
		t.Error("stopping one session stopped the other")
	}
}

func TestGroupsAndTiers(t *testing.T) {
	p := params()
	p.Group = "team"
	p.Tiers = tiers.ByGroup("team", "red", "blue")
	s := start(t, p, triangle(t), nil)
	if len(s.Positions()) != 3 {
		t.Error("grouped session lost nodes")
	}

	p.Tiers = tiers.ByGroup("team", "green")
	if _, err := New(p).Apply(context.Background(), triangle(t), nil); !errs.Is(err, errs.ErrCodeInvalidTiers) {
		t.Errorf("Apply() error = %v, want INVALID_TIERS", err)
	}
}
