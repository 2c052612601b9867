// Package circular places nodes evenly on a circle.
//
// The radius grows with node count and node size so neighbours never
// overlap: r = max(nodeSize, n * nodeSize * spacing / 2π). Nodes are placed
// in graph insertion order, starting at the top and going clockwise. A
// single node sits at the origin.
package circular

import (
	"context"
	"math"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Layout is the circular strategy.
type Layout struct {
	params layout.CircularParams
}

// New returns a circular layout.
func New(p layout.CircularParams) *Layout { return &Layout{params: p} }

// Radius returns the circle radius used for n nodes.
func (l *Layout) Radius(n int) float64 {
	size := l.params.NodeSize
	return math.Max(size, float64(n)*size*l.params.Spacing/(2*math.Pi))
}

// Apply computes positions. It is deterministic and has no hooks.
func (l *Layout) Apply(ctx context.Context, g *simgraph.Graph, _ layout.TickFunc) (*layout.Result, error) {
	ids := g.Nodes()
	pos := make(layout.Positions, len(ids))
	switch len(ids) {
	case 0:
		return &layout.Result{Layout: pos}, nil
	case 1:
		pos[ids[0]] = layout.Point{}
		return &layout.Result{Layout: pos}, nil
	}

	r := l.Radius(len(ids))
	step := 2 * math.Pi / float64(len(ids))
	for i, id := range ids {
		a := float64(i)*step - math.Pi/2
		pos[id] = layout.Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return &layout.Result{Layout: pos}, nil
}
