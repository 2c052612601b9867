package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// jiggle returns a tiny random offset used to separate coincident nodes.
func jiggle(rnd *rand.Rand) float64 { return (rnd.Float64() - 0.5) * 1e-6 }

// NodeFunc computes a per-node value.
type NodeFunc func(n *Node) float64

// Constant returns a NodeFunc that always yields v.
func Constant(v float64) NodeFunc { return func(*Node) float64 { return v } }

// =============================================================================
// Link
// =============================================================================

// Edge connects two nodes by id.
type Edge struct {
	Source, Target string
}

// Link pulls connected nodes toward a rest distance.
type Link struct {
	Edges []Edge
	// Distance returns the rest length of edge i. Defaults to 30.
	Distance func(i int, e Edge) float64
	// Strength returns the stiffness of edge i. Defaults to
	// 1 / min(degree(source), degree(target)).
	Strength   func(i int, e Edge) float64
	Iterations int

	links []resolvedLink
	rnd   *rand.Rand
}

type resolvedLink struct {
	source, target *Node
	distance       float64
	strength       float64
	bias           float64
}

// Initialize resolves edge endpoints. Edges naming unknown nodes are ignored.
func (f *Link) Initialize(nodes []*Node, rnd *rand.Rand) {
	f.rnd = rnd
	byID := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	count := make(map[string]int)
	for _, e := range f.Edges {
		if byID[e.Source] != nil && byID[e.Target] != nil {
			count[e.Source]++
			count[e.Target]++
		}
	}
	f.links = f.links[:0]
	for i, e := range f.Edges {
		s, t := byID[e.Source], byID[e.Target]
		if s == nil || t == nil || s == t {
			continue
		}
		l := resolvedLink{source: s, target: t, distance: 30}
		if f.Distance != nil {
			l.distance = f.Distance(i, e)
		}
		if f.Strength != nil {
			l.strength = f.Strength(i, e)
		} else {
			l.strength = 1 / float64(min(count[e.Source], count[e.Target]))
		}
		l.bias = float64(count[e.Source]) / float64(count[e.Source]+count[e.Target])
		f.links = append(f.links, l)
	}
}

// Apply moves linked nodes toward their rest distance.
func (f *Link) Apply(alpha float64) {
	iterations := max(f.Iterations, 1)
	for range iterations {
		for _, l := range f.links {
			s, t := l.source, l.target
			x := t.X + t.VX - s.X - s.VX
			y := t.Y + t.VY - s.Y - s.VY
			if x == 0 {
				x = jiggle(f.rnd)
			}
			if y == 0 {
				y = jiggle(f.rnd)
			}
			d := math.Sqrt(x*x + y*y)
			k := (d - l.distance) / d * alpha * l.strength
			x, y = x*k, y*k
			t.VX -= x * l.bias
			t.VY -= y * l.bias
			s.VX += x * (1 - l.bias)
			s.VY += y * (1 - l.bias)
		}
	}
}

// =============================================================================
// ManyBody
// =============================================================================

// ManyBody applies a mutual charge between all nodes. Negative strengths
// repel. When Theta is positive and every strength is negative the
// Barnes-Hut approximation is used.
type ManyBody struct {
	// Strength defaults to -30.
	Strength    NodeFunc
	DistanceMin float64
	DistanceMax float64
	Theta       float64

	nodes     []*Node
	strengths []float64
	rnd       *rand.Rand
}

// NewManyBody returns a ManyBody with d3's defaults.
func NewManyBody(strength NodeFunc) *ManyBody {
	return &ManyBody{Strength: strength, DistanceMin: 1, DistanceMax: math.Inf(1), Theta: 0.9}
}

// Initialize caches per-node strengths.
func (f *ManyBody) Initialize(nodes []*Node, rnd *rand.Rand) {
	f.nodes, f.rnd = nodes, rnd
	f.strengths = make([]float64, len(nodes))
	for i, n := range nodes {
		if f.Strength == nil {
			f.strengths[i] = -30
		} else {
			f.strengths[i] = f.Strength(n)
		}
	}
}

type body struct {
	n    *Node
	mass float64
}

func (b body) Coord2() r2.Vec { return r2.Vec{X: b.n.X, Y: b.n.Y} }
func (b body) Mass() float64 { return b.mass }

// Apply adds the charge contribution of every other node.
func (f *ManyBody) Apply(alpha float64) {
	if len(f.nodes) < 2 {
		return
	}
	min2 := f.DistanceMin * f.DistanceMin
	max2 := f.DistanceMax * f.DistanceMax
	charge := func(v r2.Vec, m2 float64) r2.Vec {
		d2 := v.X*v.X + v.Y*v.Y
		if d2 == 0 || d2 >= max2 {
			return r2.Vec{}
		}
		if d2 < min2 {
			d2 = math.Sqrt(min2 * d2)
		}
		// v points from the node toward the charge; repulsion pushes away.
		return r2.Scale(-m2*alpha/d2, v)
	}

	if f.Theta > 0 && f.repulsive() {
		if f.applyBarnesHut(charge) {
			return
		}
	}
	for i, a := range f.nodes {
		for j, b := range f.nodes {
			if i == j {
				continue
			}
			v := r2.Vec{X: b.X - a.X, Y: b.Y - a.Y}
			if v.X == 0 && v.Y == 0 {
				v = r2.Vec{X: jiggle(f.rnd), Y: jiggle(f.rnd)}
			}
			dv := charge(v, -f.strengths[j])
			a.VX += dv.X
			a.VY += dv.Y
		}
	}
}

func (f *ManyBody) repulsive() bool {
	for _, s := range f.strengths {
		if s >= 0 {
			return false
		}
	}
	return true
}

// applyBarnesHut reports false when the quadtree could not be built, for
// example when nodes coincide.
func (f *ManyBody) applyBarnesHut(charge func(v r2.Vec, m2 float64) r2.Vec) bool {
	bodies := make([]barneshut.Particle2, len(f.nodes))
	for i, n := range f.nodes {
		bodies[i] = body{n: n, mass: -f.strengths[i]}
	}
	plane, err := barneshut.NewPlane(bodies)
	if err != nil {
		return false
	}
	dv := make([]r2.Vec, len(bodies))
	for i, b := range bodies {
		dv[i] = plane.ForceOn(b, f.Theta, func(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
			return charge(v, m2)
		})
	}
	for i, n := range f.nodes {
		n.VX += dv[i].X
		n.VY += dv[i].Y
	}
	return true
}

// =============================================================================
// Collide
// =============================================================================

// Collide keeps nodes from overlapping, treating each as a circle of the
// given radius.
type Collide struct {
	// Radius defaults to the node's Radius field.
	Radius     NodeFunc
	Strength   float64
	Iterations int

	nodes []*Node
	radii []float64
	rnd   *rand.Rand
}

// Initialize caches radii.
func (f *Collide) Initialize(nodes []*Node, rnd *rand.Rand) {
	f.nodes, f.rnd = nodes, rnd
	f.radii = make([]float64, len(nodes))
	for i, n := range nodes {
		if f.Radius != nil {
			f.radii[i] = f.Radius(n)
		} else {
			f.radii[i] = n.Radius
		}
	}
}

// Apply separates overlapping pairs.
func (f *Collide) Apply(float64) {
	strength := f.Strength
	if strength == 0 {
		strength = 1
	}
	for range max(f.Iterations, 1) {
		for i := 0; i < len(f.nodes); i++ {
			a := f.nodes[i]
			ax, ay := a.X+a.VX, a.Y+a.VY
			for j := i + 1; j < len(f.nodes); j++ {
				b := f.nodes[j]
				r := f.radii[i] + f.radii[j]
				x := ax - b.X - b.VX
				y := ay - b.Y - b.VY
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = jiggle(f.rnd)
					l += x * x
				}
				if y == 0 {
					y = jiggle(f.rnd)
					l += y * y
				}
				l = math.Sqrt(l)
				k := (r - l) / l * strength
				rj := f.radii[j] * f.radii[j]
				share := rj / (f.radii[i]*f.radii[i] + rj)
				a.VX += x * k * share
				a.VY += y * k * share
				b.VX -= x * k * (1 - share)
				b.VY -= y * k * (1 - share)
			}
		}
	}
}

// =============================================================================
// Center
// =============================================================================

// Center translates all nodes so their mean sits at (X, Y).
type Center struct {
	X, Y     float64
	Strength float64

	nodes []*Node
}

// Initialize stores the node set.
func (f *Center) Initialize(nodes []*Node, _ *rand.Rand) { f.nodes = nodes }

// Apply shifts positions directly; it does not depend on alpha.
func (f *Center) Apply(float64) {
	if len(f.nodes) == 0 {
		return
	}
	strength := f.Strength
	if strength == 0 {
		strength = 1
	}
	var sx, sy float64
	for _, n := range f.nodes {
		sx += n.X
		sy += n.Y
	}
	dx := (sx/float64(len(f.nodes)) - f.X) * strength
	dy := (sy/float64(len(f.nodes)) - f.Y) * strength
	for _, n := range f.nodes {
		n.X -= dx
		n.Y -= dy
	}
}

// =============================================================================
// Positioning
// =============================================================================

// PositionX pulls each node toward an x coordinate.
type PositionX struct {
	X        NodeFunc
	Strength NodeFunc

	nodes []*Node
	xs    []float64
	ks    []float64
}

// Initialize caches targets and strengths. Nodes with a NaN target are not
// pulled.
func (f *PositionX) Initialize(nodes []*Node, _ *rand.Rand) {
	f.nodes = nodes
	f.xs, f.ks = evalTargets(nodes, f.X, f.Strength)
}

// Apply nudges x velocities.
func (f *PositionX) Apply(alpha float64) {
	for i, n := range f.nodes {
		if !math.IsNaN(f.xs[i]) {
			n.VX += (f.xs[i] - n.X) * f.ks[i] * alpha
		}
	}
}

// PositionY pulls each node toward a y coordinate.
type PositionY struct {
	Y        NodeFunc
	Strength NodeFunc

	nodes []*Node
	ys    []float64
	ks    []float64
}

// Initialize caches targets and strengths.
func (f *PositionY) Initialize(nodes []*Node, _ *rand.Rand) {
	f.nodes = nodes
	f.ys, f.ks = evalTargets(nodes, f.Y, f.Strength)
}

// Apply nudges y velocities.
func (f *PositionY) Apply(alpha float64) {
	for i, n := range f.nodes {
		if !math.IsNaN(f.ys[i]) {
			n.VY += (f.ys[i] - n.Y) * f.ks[i] * alpha
		}
	}
}

func evalTargets(nodes []*Node, target, strength NodeFunc) (vals, ks []float64) {
	vals = make([]float64, len(nodes))
	ks = make([]float64, len(nodes))
	for i, n := range nodes {
		if target != nil {
			vals[i] = target(n)
		}
		ks[i] = 0.1
		if strength != nil {
			ks[i] = strength(n)
		}
	}
	return vals, ks
}

// Radial pulls nodes toward a circle around (X, Y).
type Radial struct {
	Radius   NodeFunc
	Strength NodeFunc
	X, Y     float64

	nodes []*Node
	radii []float64
	ks    []float64
}

// Initialize caches radii and strengths. Nodes with a NaN radius are not
// pulled.
func (f *Radial) Initialize(nodes []*Node, _ *rand.Rand) {
	f.nodes = nodes
	f.radii, f.ks = evalTargets(nodes, f.Radius, f.Strength)
}

// Apply nudges velocities toward the circle.
func (f *Radial) Apply(alpha float64) {
	for i, n := range f.nodes {
		if math.IsNaN(f.radii[i]) {
			continue
		}
		dx, dy := n.X-f.X, n.Y-f.Y
		r := math.Sqrt(dx*dx + dy*dy)
		if r == 0 {
			r = 1e-6
		}
		k := (f.radii[i] - r) * f.ks[i] * alpha / r
		n.VX += dx * k
		n.VY += dy * k
	}
}

// =============================================================================
// Clusters
// =============================================================================

// ClusterRepel pushes groups apart. Each group's position is approximated
// by its first member, and when two proxies are closer than Distance every
// member of both groups is pushed away from the other.
type ClusterRepel struct {
	// Group returns a node's group key; "" means ungrouped.
	Group    func(n *Node) string
	Distance float64
	Strength float64

	groups [][]*Node
	rnd    *rand.Rand
}

// Initialize collects groups in node order.
func (f *ClusterRepel) Initialize(nodes []*Node, rnd *rand.Rand) {
	f.rnd = rnd
	f.groups = f.groups[:0]
	index := map[string]int{}
	for _, n := range nodes {
		g := f.Group(n)
		if g == "" {
			continue
		}
		i, ok := index[g]
		if !ok {
			i = len(f.groups)
			index[g] = i
			f.groups = append(f.groups, nil)
		}
		f.groups[i] = append(f.groups[i], n)
	}
}

// Apply separates overlapping group proxies.
func (f *ClusterRepel) Apply(alpha float64) {
	for i := 0; i < len(f.groups); i++ {
		a := f.groups[i][0]
		for j := i + 1; j < len(f.groups); j++ {
			b := f.groups[j][0]
			x, y := b.X-a.X, b.Y-a.Y
			if x == 0 && y == 0 {
				x, y = jiggle(f.rnd), jiggle(f.rnd)
			}
			l := math.Sqrt(x*x + y*y)
			if l >= f.Distance {
				continue
			}
			k := (f.Distance - l) / l * alpha * f.Strength / 2
			for _, n := range f.groups[i] {
				n.VX -= x * k
				n.VY -= y * k
			}
			for _, n := range f.groups[j] {
				n.VX += x * k
				n.VY += y * k
			}
		}
	}
}

// GroupEdges links every member of a group to the group's first member.
// Nodes for which group returns "" are skipped.
func GroupEdges(nodes []*Node, group func(n *Node) string) []Edge {
	first := map[string]string{}
	var out []Edge
	for _, n := range nodes {
		g := group(n)
		if g == "" {
			continue
		}
		if head, ok := first[g]; ok {
			out = append(out, Edge{Source: head, Target: n.ID})
		} else {
			first[g] = n.ID
		}
	}
	return out
}
