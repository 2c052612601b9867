// Package marketing runs a one-shot radial force simulation.
//
// Forces are tuned by node category. Targets are pulled to the centre,
// other nodes to an inner ring, and latent nodes to the outer ring at
// Radius, biased toward the top. Link, charge and collision forces keep
// the drawing readable. When tiers are configured an extra force pulls
// tiered nodes to their tier's level.
//
// The simulation is ticked exactly 1000 times, so the result depends only on
// the graph, its stored positions and the parameters.
package marketing

import (
	"context"
	"math"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/layout/force"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Ticks is the fixed number of simulation steps.
const Ticks = 1000

const (
	chunk       = 100
	seed        = 7
	tierPull    = 1.0
	latentPullY = 0.1
)

// Layout is the marketing strategy.
type Layout struct {
	params layout.MarketingParams
}

// New returns a marketing layout.
func New(p layout.MarketingParams) *Layout { return &Layout{params: p} }

// Apply runs the simulation to completion. It has no hooks.
func (l *Layout) Apply(ctx context.Context, g *simgraph.Graph, _ layout.TickFunc) (*layout.Result, error) {
	p := l.params
	nodes := force.FromGraph(g, p.NodeSize)
	if len(nodes) == 0 {
		return &layout.Result{Layout: layout.Positions{}}, nil
	}
	levels, err := force.TierLevels(g, p.Tiers, p.TierSeparation)
	if err != nil {
		return nil, err
	}

	sim := force.New(nodes, force.WithSeed(seed))
	sim.AddForce("link", &force.Link{
		Edges: force.EdgesFrom(g),
		Distance: func(int, force.Edge) float64 {
			return p.LinkDistance
		},
	})
	sim.AddForce("charge", force.NewManyBody(l.charge))
	sim.AddForce("y", &force.PositionY{Y: l.y, Strength: force.Constant(latentPullY)})
	sim.AddForce("collide", &force.Collide{Radius: l.collide})
	sim.AddForce("radial", &force.Radial{Radius: l.ring, Strength: l.ringStrength})
	if levels != nil {
		sim.AddForce("tiers", force.TierForce(levels, p.Orientation, tierPull))
	}

	for done := 0; done < Ticks; done += chunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sim.Tick(min(chunk, Ticks-done))
	}

	pos := make(layout.Positions, len(nodes))
	for id, xy := range sim.Positions() {
		pos[id] = layout.Point{X: xy[0], Y: xy[1]}
	}
	return &layout.Result{Layout: pos}, nil
}

func (l *Layout) charge(n *force.Node) float64 {
	switch n.Category {
	case simgraph.CategoryTarget:
		return -600
	case simgraph.CategoryLatent:
		return -200
	}
	return -400
}

// y lifts latent nodes toward the top of the outer ring.
func (l *Layout) y(n *force.Node) float64 {
	if n.Category == simgraph.CategoryLatent {
		return -l.params.Radius
	}
	return math.NaN()
}

func (l *Layout) collide(n *force.Node) float64 {
	if n.Category == simgraph.CategoryTarget {
		return 2*l.params.NodeSize + 2
	}
	return 1.5*l.params.NodeSize + 2
}

func (l *Layout) ring(n *force.Node) float64 {
	switch n.Category {
	case simgraph.CategoryTarget:
		return 0
	case simgraph.CategoryLatent:
		return l.params.Radius
	}
	return 0.6 * l.params.Radius
}

func (l *Layout) ringStrength(n *force.Node) float64 {
	switch n.Category {
	case simgraph.CategoryTarget:
		return 0.5
	case simgraph.CategoryLatent:
		return 0.8
	}
	return 0.3
}
