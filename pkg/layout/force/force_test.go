package force

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"
)

func nodes(ids ...string) []*Node {
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = &Node{ID: id, X: math.NaN(), Y: math.NaN(), Radius: 5}
	}
	return out
}

func TestPhyllotaxisPlacement(t *testing.T) {
	sim := New(nodes("a", "b", "c"))
	seen := map[[2]float64]bool{}
	for id, p := range sim.Positions() {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
			t.Fatalf("node %s not placed", id)
		}
		if seen[p] {
			t.Errorf("node %s shares position %v", id, p)
		}
		seen[p] = true
	}
}

func TestAlphaCools(t *testing.T) {
	sim := New(nodes("a"))
	sim.Tick(300)
	if a := sim.Alpha(); a > 0.0011 {
		t.Errorf("Alpha() after 300 ticks = %v, want ~0.001", a)
	}
	sim.SetAlphaTarget(0.3)
	sim.Tick(300)
	if a := sim.Alpha(); math.Abs(a-0.3) > 0.01 {
		t.Errorf("Alpha() with target 0.3 = %v, want ~0.3", a)
	}
}

func TestLinkConverges(t *testing.T) {
	ns := nodes("a", "b")
	ns[0].X, ns[0].Y = 0, 0
	ns[1].X, ns[1].Y = 200, 0
	sim := New(ns)
	sim.AddForce("link", &Link{
		Edges:    []Edge{{Source: "a", Target: "b"}},
		Distance: func(int, Edge) float64 { return 50 },
	})
	sim.Tick(300)
	p := sim.Positions()
	if d := math.Hypot(p["a"][0]-p["b"][0], p["a"][1]-p["b"][1]); math.Abs(d-50) > 5 {
		t.Errorf("distance = %v, want ~50", d)
	}
}

func TestManyBodyRepels(t *testing.T) {
	for _, theta := range []float64{0, 0.9} {
		ns := nodes("a", "b", "c")
		ns[0].X, ns[0].Y = 0, 0
		ns[1].X, ns[1].Y = 1, 0
		ns[2].X, ns[2].Y = 0, 1
		sim := New(ns)
		mb := NewManyBody(Constant(-30))
		mb.Theta = theta
		sim.AddForce("charge", mb)
		sim.Tick(50)
		p := sim.Positions()
		if d := math.Hypot(p["a"][0]-p["b"][0], p["a"][1]-p["b"][1]); d <= 1 {
			t.Errorf("theta=%v: distance = %v, want > 1", theta, d)
		}
	}
}

func TestCollideSeparates(t *testing.T) {
	ns := nodes("a", "b")
	ns[0].X, ns[0].Y = 0, 0
	ns[1].X, ns[1].Y = 1, 0
	sim := New(ns)
	sim.AddForce("collide", &Collide{})
	sim.Tick(100)
	p := sim.Positions()
	if d := math.Hypot(p["a"][0]-p["b"][0], p["a"][1]-p["b"][1]); d < 9 {
		t.Errorf("distance = %v, want >= ~10", d)
	}
}

func TestPinHoldsNode(t *testing.T) {
	ns := nodes("a", "b")
	sim := New(ns)
	sim.AddForce("charge", NewManyBody(nil))
	if !sim.Pin("a", 7, 9) {
		t.Fatal("Pin() = false")
	}
	sim.Tick(10)
	if p := sim.Positions()["a"]; p != [2]float64{7, 9} {
		t.Errorf("pinned node at %v, want [7 9]", p)
	}
	if got := sim.Pinned(); len(got) != 1 || got[0] != "a" {
		t.Errorf("Pinned() = %v, want [a]", got)
	}
	sim.Unpin("a")
	if got := sim.Pinned(); len(got) != 0 {
		t.Errorf("Pinned() after Unpin = %v, want none", got)
	}
	if sim.Pin("ghost", 0, 0) {
		t.Error("Pin(ghost) = true")
	}
}

func TestPositionAndRadial(t *testing.T) {
	ns := nodes("a")
	ns[0].X, ns[0].Y = 0, 0
	sim := New(ns)
	sim.AddForce("y", &PositionY{Y: Constant(100), Strength: Constant(1)})
	sim.AddForce("x", &PositionX{X: Constant(50), Strength: Constant(1)})
	sim.Tick(300)
	p := sim.Positions()["a"]
	if math.Abs(p[0]-50) > 1 || math.Abs(p[1]-100) > 1 {
		t.Errorf("position = %v, want ~[50 100]", p)
	}

	rs := nodes("r")
	rs[0].X, rs[0].Y = 10, 0
	rsim := New(rs)
	rsim.AddForce("radial", &Radial{Radius: Constant(80), Strength: Constant(1)})
	rsim.Tick(300)
	q := rsim.Positions()["r"]
	if r := math.Hypot(q[0], q[1]); math.Abs(r-80) > 1 {
		t.Errorf("radius = %v, want ~80", r)
	}
}

func TestClusterRepel(t *testing.T) {
	ns := nodes("a1", "a2", "b1")
	ns[0].X, ns[0].Y, ns[0].Group = 0, 0, "a"
	ns[1].X, ns[1].Y, ns[1].Group = 1, 1, "a"
	ns[2].X, ns[2].Y, ns[2].Group = 5, 0, "b"
	sim := New(ns)
	sim.AddForce("cluster", &ClusterRepel{
		Group:    func(n *Node) string { return n.Group },
		Distance: 100,
		Strength: 1,
	})
	sim.Tick(100)
	p := sim.Positions()
	if d := math.Hypot(p["a1"][0]-p["b1"][0], p["a1"][1]-p["b1"][1]); d < 50 {
		t.Errorf("group proxies %v apart, want pushed apart", d)
	}
}

func TestGroupEdges(t *testing.T) {
	ns := nodes("a", "b", "c", "d")
	ns[0].Group, ns[1].Group, ns[3].Group = "g", "g", "g"
	got := GroupEdges(ns, func(n *Node) string { return n.Group })
	want := []Edge{{"a", "b"}, {"a", "d"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("GroupEdges() = %v, want %v", got, want)
	}
}

func TestStartStop(t *testing.T) {
	sim := New(nodes("a", "b"))
	sim.AddForce("charge", NewManyBody(nil))
	sim.SetAlphaTarget(0.3)

	var mu sync.Mutex
	ticks := 0
	sim.Start(context.Background(), time.Millisecond, func(map[string][2]float64) {
		mu.Lock()
		ticks++
		mu.Unlock()
	})
	if !sim.Running() {
		t.Fatal("Running() = false after Start")
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := ticks
		mu.Unlock()
		if n >= 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	sim.Stop()
	if sim.Running() {
		t.Error("Running() = true after Stop")
	}
	mu.Lock()
	defer mu.Unlock()
	if ticks < 3 {
		t.Errorf("ticks = %d, want >= 3", ticks)
	}
}

func TestStartExitsWhenCool(t *testing.T) {
	sim := New(nodes("a"))
	sim.SetAlpha(0.0011)
	sim.Start(context.Background(), time.Millisecond, nil)
	deadline := time.Now().Add(2 * time.Second)
	for sim.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if sim.Running() {
		t.Error("simulation kept running after cooling")
	}
}
