package force

import (
	"math"

	"github.com/matzehuels/graphlayout/pkg/convert"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

// FromGraph builds one simulation node per graph node, in graph order.
// Nodes with a stored position start there; the rest start at NaN and are
// placed by New. Category is read from the node, or derived when unset.
func FromGraph(g *simgraph.Graph, radius float64) []*Node {
	ids := g.Nodes()
	out := make([]*Node, len(ids))
	for i, id := range ids {
		attrs, _ := g.NodeAttributes(id)
		n := &Node{ID: id, X: math.NaN(), Y: math.NaN(), Radius: radius}
		if x, y, ok := attrs.Position(); ok {
			n.X, n.Y = x, y
		}
		if n.Category = attrs.Str(simgraph.AttrCategory); n.Category == "" {
			n.Category = convert.Category(g, id)
		}
		out[i] = n
	}
	return out
}

// EdgesFrom returns g's edges in stored direction, without self-loops.
func EdgesFrom(g *simgraph.Graph) []Edge {
	var out []Edge
	for _, e := range g.Edges() {
		if e.Source != e.Target {
			out = append(out, Edge{Source: e.Source, Target: e.Target})
		}
	}
	return out
}

// SetGroups labels nodes with their group at path. Nodes without a value
// stay ungrouped.
func SetGroups(nodes []*Node, g *simgraph.Graph, path string) {
	if path == "" {
		return
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	byNode := tiers.Groups(ids, path, g).ByNode
	for _, n := range nodes {
		n.Group = byNode[n.ID]
	}
}

// GroupOf returns a node's group label.
func GroupOf(n *Node) string { return n.Group }

// TierLevels resolves spec and returns the tier-axis coordinate of every
// tiered node, tiers spaced sep apart and centred on zero. The zero spec
// yields nil.
func TierLevels(g *simgraph.Graph, spec tiers.Spec, sep float64) (map[string]float64, error) {
	resolved, err := tiers.Resolve(spec, g)
	if err != nil || len(resolved) == 0 {
		return nil, err
	}
	offset := float64(len(resolved)-1) * sep / 2
	out := make(map[string]float64)
	for t, members := range resolved {
		for _, id := range members {
			out[id] = float64(t)*sep - offset
		}
	}
	return out, nil
}

// TierForce pulls tiered nodes to their level along the tier axis of o:
// y for vertical layouts, x for horizontal ones.
func TierForce(levels map[string]float64, o layout.Orientation, strength float64) Force {
	target := func(n *Node) float64 {
		if v, ok := levels[n.ID]; ok {
			return v
		}
		return math.NaN()
	}
	if o == layout.Horizontal {
		return &PositionX{X: target, Strength: Constant(strength)}
	}
	return &PositionY{Y: target, Strength: Constant(strength)}
}
