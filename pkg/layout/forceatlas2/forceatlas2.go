// Package forceatlas2 implements the ForceAtlas2 continuous graph layout as
// a fixed number of iterations.
//
// Each iteration computes degree-weighted repulsion between every pair of
// nodes (optionally approximated with a Barnes-Hut quadtree), gravity toward
// the origin, and attraction along edges, then moves each node with the
// adaptive per-node speed of the original algorithm: swinging nodes slow
// down, nodes with consistent traction speed up.
//
// When no node has a position yet, nodes are first scattered with a seeded
// random source and an overlap-removal pass pushes apart nodes closer than
// two node sizes. Given the same seed the result is deterministic.
package forceatlas2

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Layout is the ForceAtlas2 strategy.
type Layout struct {
	params layout.ForceAtlas2Params
}

// New returns a ForceAtlas2 layout.
func New(p layout.ForceAtlas2Params) *Layout { return &Layout{params: p} }

type node struct {
	id           string
	x, y         float64
	dx, dy       float64
	oldDX, oldDY float64
	mass         float64
	size         float64
	placed       bool
}

func (n *node) Coord2() r2.Vec { return r2.Vec{X: n.x, Y: n.y} }
func (n *node) Mass() float64 { return n.mass }

type edge struct {
	s, t   *node
	weight float64
}

// Apply runs the configured number of iterations. Context cancellation is
// checked between iterations.
func (l *Layout) Apply(ctx context.Context, g *simgraph.Graph, _ layout.TickFunc) (*layout.Result, error) {
	ids := g.Nodes()
	if len(ids) == 0 {
		return &layout.Result{Layout: layout.Positions{}}, nil
	}

	nodes, edges := l.build(g)
	if !anyPlaced(nodes) {
		l.scatter(nodes)
		l.removeOverlap(nodes)
	} else {
		l.placeNew(nodes, edges)
	}

	for range l.params.Iterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.iterate(nodes, edges)
	}

	pos := make(layout.Positions, len(nodes))
	for _, n := range nodes {
		pos[n.id] = layout.Point{X: n.x, Y: n.y}
	}
	return &layout.Result{Layout: pos}, nil
}

func (l *Layout) build(g *simgraph.Graph) ([]*node, []edge) {
	ids := g.Nodes()
	nodes := make([]*node, len(ids))
	byID := make(map[string]*node, len(ids))
	for i, id := range ids {
		attrs, _ := g.NodeAttributes(id)
		x, y, ok := attrs.Position()
		n := &node{id: id, x: x, y: y, mass: 1 + float64(g.Degree(id)), size: l.params.NodeSize, placed: ok}
		nodes[i] = n
		byID[id] = n
	}
	var edges []edge
	for _, e := range g.Edges() {
		if e.Source == e.Target {
			continue
		}
		w, ok := e.Attributes.Float("weight")
		if !ok || w <= 0 {
			w = 1
		}
		edges = append(edges, edge{s: byID[e.Source], t: byID[e.Target], weight: w})
	}
	return nodes, edges
}

func anyPlaced(nodes []*node) bool {
	for _, n := range nodes {
		if n.placed {
			return true
		}
	}
	return false
}

func (l *Layout) newRand() *rand.Rand {
	seed := l.params.Seed
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func (l *Layout) scatter(nodes []*node) {
	rnd := l.newRand()
	extent := math.Sqrt(float64(len(nodes))) * l.params.NodeSize * 4
	for _, n := range nodes {
		n.x = (rnd.Float64()*2 - 1) * extent
		n.y = (rnd.Float64()*2 - 1) * extent
	}
}

// placeNew seeds nodes without a position next to the mean of their placed
// neighbours, or the centroid of all placed nodes, with seeded jitter so
// that no two new nodes start on the same point.
func (l *Layout) placeNew(nodes []*node, edges []edge) {
	var cx, cy float64
	var placed int
	for _, n := range nodes {
		if n.placed {
			cx, cy = cx+n.x, cy+n.y
			placed++
		}
	}
	cx, cy = cx/float64(placed), cy/float64(placed)

	type sum struct {
		x, y float64
		n    int
	}
	anchors := map[*node]*sum{}
	add := func(n, nb *node) {
		if n.placed || !nb.placed {
			return
		}
		a := anchors[n]
		if a == nil {
			a = &sum{}
			anchors[n] = a
		}
		a.x, a.y, a.n = a.x+nb.x, a.y+nb.y, a.n+1
	}
	for _, e := range edges {
		add(e.s, e.t)
		add(e.t, e.s)
	}

	rnd := l.newRand()
	spread := 2 * l.params.NodeSize
	for _, n := range nodes {
		if n.placed {
			continue
		}
		x, y := cx, cy
		if a := anchors[n]; a != nil {
			x, y = a.x/float64(a.n), a.y/float64(a.n)
		}
		angle := rnd.Float64() * 2 * math.Pi
		r := spread * (0.5 + rnd.Float64())
		n.x = x + r*math.Cos(angle)
		n.y = y + r*math.Sin(angle)
	}
}

// removeOverlap pushes apart pairs closer than two node sizes.
func (l *Layout) removeOverlap(nodes []*node) {
	minDist := 2 * l.params.NodeSize
	for range 50 {
		moved := false
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				a, b := nodes[i], nodes[j]
				dx, dy := b.x-a.x, b.y-a.y
				d := math.Hypot(dx, dy)
				if d >= minDist {
					continue
				}
				if d == 0 {
					dx, dy, d = 1, 0, 1
				}
				push := (minDist - d) / 2 / d
				a.x -= dx * push
				a.y -= dy * push
				b.x += dx * push
				b.y += dy * push
				moved = true
			}
		}
		if !moved {
			return
		}
	}
}

func (l *Layout) iterate(nodes []*node, edges []edge) {
	p := l.params
	for _, n := range nodes {
		n.oldDX, n.oldDY = n.dx, n.dy
		n.dx, n.dy = 0, 0
	}

	l.repulse(nodes)

	// Gravity
	gravity := p.Gravity / p.ScalingRatio
	for _, n := range nodes {
		d := math.Hypot(n.x, n.y)
		var factor float64
		switch {
		case p.StrongGravityMode:
			factor = p.ScalingRatio * n.mass * gravity
		case d > 0:
			factor = p.ScalingRatio * n.mass * gravity / d
		}
		n.dx -= n.x * factor
		n.dy -= n.y * factor
	}

	// Attraction
	coefficient := 1.0
	if p.OutboundAttractionDistribution {
		var total float64
		for _, n := range nodes {
			total += n.mass
		}
		coefficient = total / float64(len(nodes))
	}
	for _, e := range edges {
		ewc := 1.0
		switch p.EdgeWeightInfluence {
		case 0:
		case 1:
			ewc = e.weight
		default:
			ewc = math.Pow(e.weight, p.EdgeWeightInfluence)
		}
		xd, yd := e.s.x-e.t.x, e.s.y-e.t.y
		d := math.Hypot(xd, yd)
		if p.AdjustSizes {
			d -= e.s.size + e.t.size
			if d <= 0 {
				continue
			}
		}
		var factor float64
		switch {
		case p.LinLogMode && d > 0:
			factor = -coefficient * ewc * math.Log(1+d) / d
		case p.LinLogMode:
			continue
		default:
			factor = -coefficient * ewc
		}
		if p.OutboundAttractionDistribution {
			factor /= e.s.mass
		}
		e.s.dx += xd * factor
		e.s.dy += yd * factor
		e.t.dx -= xd * factor
		e.t.dy -= yd * factor
	}

	// Apply with per-node adaptive speed.
	for _, n := range nodes {
		swinging := n.mass * math.Hypot(n.oldDX-n.dx, n.oldDY-n.dy)
		traction := math.Hypot(n.oldDX+n.dx, n.oldDY+n.dy) / 2
		speed := 0.1 * math.Log(1+traction) / (1 + math.Sqrt(swinging))
		if p.AdjustSizes {
			speed = math.Min(speed, 10)
		}
		n.x += n.dx * speed / p.SlowDown
		n.y += n.dy * speed / p.SlowDown
	}
}

func (l *Layout) repulse(nodes []*node) {
	p := l.params
	if p.BarnesHutOptimize && !p.AdjustSizes && l.repulseBarnesHut(nodes) {
		return
	}
	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			xd, yd := a.x-b.x, a.y-b.y
			var factor float64
			if p.AdjustSizes {
				d := math.Hypot(xd, yd) - a.size - b.size
				switch {
				case d > 0:
					factor = p.ScalingRatio * a.mass * b.mass / (d * d)
				case d < 0:
					factor = 100 * p.ScalingRatio * a.mass * b.mass
				}
			} else if d2 := xd*xd + yd*yd; d2 > 0 {
				factor = p.ScalingRatio * a.mass * b.mass / d2
			}
			a.dx += xd * factor
			a.dy += yd * factor
			b.dx -= xd * factor
			b.dy -= yd * factor
		}
	}
}

// repulseBarnesHut approximates pairwise repulsion with a quadtree. Reports
// false if the tree could not be built.
func (l *Layout) repulseBarnesHut(nodes []*node) bool {
	particles := make([]barneshut.Particle2, len(nodes))
	for i, n := range nodes {
		particles[i] = n
	}
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return false
	}
	k := l.params.ScalingRatio
	repulsion := func(_, _ barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
		d2 := v.X*v.X + v.Y*v.Y
		if d2 == 0 {
			return r2.Vec{}
		}
		// v points toward the other mass; repulsion acts the other way.
		return r2.Scale(-k*m1*m2/d2, v)
	}
	forces := make([]r2.Vec, len(nodes))
	for i, n := range nodes {
		forces[i] = plane.ForceOn(n, l.params.BarnesHutTheta, repulsion)
	}
	for i, n := range nodes {
		n.dx += forces[i].X
		n.dy += forces[i].Y
	}
	return true
}
