package fcose

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

// Layout is the fcose strategy.
type Layout struct {
	params layout.FcoseParams
}

// New returns an fcose layout.
func New(p layout.FcoseParams) *Layout { return &Layout{params: p} }

// gravityScale converts the gravity parameters into per-step pull.
const gravityScale = 0.05

type state struct {
	ids    []string
	index  map[string]int
	pos    []r2.Vec
	edges  [][2]int
	groups [][]int
	cons   *constraints
}

// Apply computes positions in one shot.
func (l *Layout) Apply(ctx context.Context, g *simgraph.Graph, _ layout.TickFunc) (*layout.Result, error) {
	if g.Order() == 0 {
		return &layout.Result{Layout: layout.Positions{}}, nil
	}
	s, err := l.prepare(g)
	if err != nil {
		return nil, err
	}

	iterations := 0
	switch l.params.Quality {
	case layout.QualityDefault:
		iterations = l.params.NumIter
	case layout.QualityProof:
		iterations = l.params.NumIter * 2
	}
	if err := l.refine(ctx, s, iterations); err != nil {
		return nil, err
	}
	s.cons.project(s.pos)

	out := make(layout.Positions, len(s.ids))
	for i, id := range s.ids {
		p := layout.Point{X: s.pos[i].X, Y: s.pos[i].Y}
		out[id] = layout.Oriented(p, l.params.Orientation)
	}
	return &layout.Result{Layout: out}, nil
}

func (l *Layout) prepare(g *simgraph.Graph) (*state, error) {
	s := &state{ids: g.Nodes(), index: map[string]int{}}
	for i, id := range s.ids {
		s.index[id] = i
	}
	for _, e := range g.Edges() {
		if e.Source != e.Target {
			s.edges = append(s.edges, [2]int{s.index[e.Source], s.index[e.Target]})
		}
	}
	if l.params.Group != "" {
		gr := tiers.Groups(s.ids, l.params.Group, g)
		for _, k := range gr.Keys {
			var members []int
			for _, id := range gr.Members[k] {
				members = append(members, s.index[id])
			}
			s.groups = append(s.groups, members)
		}
	}

	cons, err := buildConstraints(g, s.index, l.params)
	if err != nil {
		return nil, err
	}
	s.cons = cons

	seed := l.params.Seed
	rnd := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	if prior, ok := l.prior(g, s.ids); ok {
		s.pos = prior
	} else {
		s.pos = spectral(len(s.ids), s.edges, l.params.IdealEdgeLength, rnd)
	}
	s.cons.project(s.pos)
	return s, nil
}

// prior returns existing positions, in tier-axis coordinates, when every
// node has one and randomisation is off.
func (l *Layout) prior(g *simgraph.Graph, ids []string) ([]r2.Vec, bool) {
	if l.params.Randomize {
		return nil, false
	}
	out := make([]r2.Vec, len(ids))
	for i, id := range ids {
		attrs, _ := g.NodeAttributes(id)
		x, y, ok := attrs.Position()
		if !ok {
			return nil, false
		}
		p := layout.Oriented(layout.Point{X: x, Y: y}, l.params.Orientation)
		out[i] = r2.Vec{X: p.X, Y: p.Y}
	}
	return out, true
}

type particle struct {
	p *r2.Vec
}

func (q particle) Coord2() r2.Vec { return *q.p }
func (q particle) Mass() float64 { return 1 }

func (l *Layout) refine(ctx context.Context, s *state, iterations int) error {
	if iterations == 0 || len(s.ids) < 2 {
		return nil
	}
	p := l.params
	n := len(s.ids)
	ideal := p.IdealEdgeLength
	minDist := math.Max(p.NodeSize, 1)
	temp := ideal * math.Sqrt(float64(n))
	final := 0.1
	cooling := math.Pow(final/temp, 1/float64(iterations))

	disp := make([]r2.Vec, n)
	for it := range iterations {
		if it%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		clear(disp)

		// Springs
		for _, e := range s.edges {
			v := r2.Sub(s.pos[e[1]], s.pos[e[0]])
			d := math.Max(r2.Norm(v), minDist)
			f := r2.Scale(p.EdgeElasticity*(d-ideal)/d, v)
			disp[e[0]] = r2.Add(disp[e[0]], f)
			disp[e[1]] = r2.Sub(disp[e[1]], f)
		}

		l.repel(s, disp, minDist)

		// Gravity toward the centroid, then toward group centroids.
		c := centroid(s.pos, nil)
		for i := range s.pos {
			disp[i] = r2.Add(disp[i], r2.Scale(-p.Gravity*gravityScale, r2.Sub(s.pos[i], c)))
		}
		for _, members := range s.groups {
			gc := centroid(s.pos, members)
			for _, i := range members {
				disp[i] = r2.Add(disp[i], r2.Scale(-p.GravityCompound*gravityScale, r2.Sub(s.pos[i], gc)))
			}
		}

		for i := range s.pos {
			d := r2.Norm(disp[i])
			if d > temp {
				disp[i] = r2.Scale(temp/d, disp[i])
			}
			s.pos[i] = r2.Add(s.pos[i], disp[i])
		}
		s.cons.project(s.pos)
		temp *= cooling
	}
	return nil
}

func (l *Layout) repel(s *state, disp []r2.Vec, minDist float64) {
	k := l.params.NodeRepulsion
	force := func(v r2.Vec, m float64) r2.Vec {
		d2 := v.X*v.X + v.Y*v.Y
		if d2 == 0 {
			return r2.Vec{}
		}
		d2 = math.Max(d2, minDist*minDist)
		return r2.Scale(-k*m/(d2*math.Sqrt(d2)), v)
	}

	if len(s.pos) > 64 {
		particles := make([]barneshut.Particle2, len(s.pos))
		for i := range s.pos {
			particles[i] = particle{&s.pos[i]}
		}
		if plane, err := barneshut.NewPlane(particles); err == nil {
			for i, q := range particles {
				f := plane.ForceOn(q, 0.9, func(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
					return force(v, m2)
				})
				disp[i] = r2.Add(disp[i], f)
			}
			return
		}
	}
	for i := range s.pos {
		for j := range s.pos {
			if i != j {
				disp[i] = r2.Add(disp[i], force(r2.Sub(s.pos[j], s.pos[i]), 1))
			}
		}
	}
}

func centroid(pos []r2.Vec, members []int) r2.Vec {
	var c r2.Vec
	if members == nil {
		for _, p := range pos {
			c = r2.Add(c, p)
		}
		return r2.Scale(1/float64(len(pos)), c)
	}
	for _, i := range members {
		c = r2.Add(c, pos[i])
	}
	return r2.Scale(1/float64(len(members)), c)
}
