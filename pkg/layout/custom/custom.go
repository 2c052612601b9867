// Package custom is the passthrough strategy: nodes stay where the caller
// put them.
//
// A node's position is its current x/y, falling back to the
// meta.rendering_properties x/y hints, falling back to the origin.
package custom

import (
	"context"

	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Layout is the custom strategy.
type Layout struct {
	params layout.CustomParams
}

// New returns a custom layout.
func New(p layout.CustomParams) *Layout { return &Layout{params: p} }

// Apply reads positions from the graph.
func (l *Layout) Apply(ctx context.Context, g *simgraph.Graph, _ layout.TickFunc) (*layout.Result, error) {
	pos := make(layout.Positions, g.Order())
	for _, id := range g.Nodes() {
		attrs, _ := g.NodeAttributes(id)
		pos[id] = position(attrs)
	}
	return &layout.Result{Layout: pos}, nil
}

func position(attrs simgraph.Attributes) layout.Point {
	if x, y, ok := attrs.Position(); ok {
		return layout.Point{X: x, Y: y}
	}
	x, okX := attrs.Float(simgraph.Rendering(graph.PropX))
	y, okY := attrs.Float(simgraph.Rendering(graph.PropY))
	if okX && okY {
		return layout.Point{X: x, Y: y}
	}
	return layout.Point{}
}
