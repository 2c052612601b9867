package fcose

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

// constraints are expressed in tier-axis coordinates: tiers stack along y,
// members of a tier spread along x.
type constraints struct {
	tiers   [][]int
	order   map[int]int
	tierGap float64
	nodeGap float64
}

func buildConstraints(g *simgraph.Graph, index map[string]int, p layout.FcoseParams) (*constraints, error) {
	c := &constraints{tierGap: p.TierSeparation, nodeGap: p.NodeSeparation}
	resolved, err := tiers.Resolve(p.Tiers, g)
	if err != nil {
		return nil, err
	}
	for _, tier := range resolved {
		members := make([]int, len(tier))
		for i, id := range tier {
			members[i] = index[id]
		}
		c.tiers = append(c.tiers, members)
	}
	if path := p.Tiers.OrderPath(); path != "" && len(resolved) > 0 {
		var ids []string
		for _, tier := range resolved {
			ids = append(ids, tier...)
		}
		keys, err := tiers.OrderInts(tiers.Order(ids, path, g))
		if err != nil {
			return nil, err
		}
		c.order = make(map[int]int, len(keys))
		for id, k := range keys {
			c.order[index[id]] = k
		}
	}
	return c, nil
}

// project moves pos onto the constraint set: alignment within tiers,
// separation between consecutive tiers, and ordered separation within each
// tier.
func (c *constraints) project(pos []r2.Vec) {
	if len(c.tiers) == 0 {
		return
	}
	levels := make([]float64, len(c.tiers))
	for t, members := range c.tiers {
		var sum float64
		for _, i := range members {
			sum += pos[i].Y
		}
		levels[t] = sum / float64(len(members))
	}
	for t := 1; t < len(levels); t++ {
		levels[t] = max(levels[t], levels[t-1]+c.tierGap)
	}

	for t, members := range c.tiers {
		for _, i := range members {
			pos[i].Y = levels[t]
		}
		c.separate(pos, members)
	}
}

// separate keeps tier members nodeGap apart along x. Members with order
// keys take the available slots in key order; the rest keep their relative
// x order.
func (c *constraints) separate(pos []r2.Vec, members []int) {
	if len(members) < 2 {
		return
	}
	byX := slices.Clone(members)
	sort.SliceStable(byX, func(a, b int) bool { return pos[byX[a]].X < pos[byX[b]].X })
	xs := make([]float64, len(byX))
	for k, i := range byX {
		xs[k] = pos[i].X
	}

	ordered := byX
	if c.order != nil {
		ordered = slices.Clone(byX)
		sort.SliceStable(ordered, func(a, b int) bool {
			ka, okA := c.order[ordered[a]]
			kb, okB := c.order[ordered[b]]
			switch {
			case okA && okB:
				return ka < kb
			case okA != okB:
				return okA
			}
			return false
		})
	}

	// Enforce the gap left to right, then recentre on the original mean.
	var before, after float64
	for k := range xs {
		before += xs[k]
		if k > 0 && xs[k] < xs[k-1]+c.nodeGap {
			xs[k] = xs[k-1] + c.nodeGap
		}
		after += xs[k]
	}
	shift := (before - after) / float64(len(xs))
	for k, i := range ordered {
		pos[i].X = xs[k] + shift
	}
}
