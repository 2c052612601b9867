package planar

import (
	"context"
	"slices"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

// Layout is the layered strategy.
type Layout struct {
	params layout.PlanarParams
}

// New returns a planar layout.
func New(p layout.PlanarParams) *Layout { return &Layout{params: p} }

// Apply computes the layered drawing. The result's hooks recompute it from
// a snapshot whenever nodes or edges are added.
func (l *Layout) Apply(ctx context.Context, g *simgraph.Graph, tick layout.TickFunc) (*layout.Result, error) {
	res, err := l.compute(ctx, g)
	if err != nil {
		return nil, err
	}
	recompute := func(ctx context.Context, s simgraph.Snapshot) error {
		next, err := simgraph.FromSnapshot(s)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidGraph, err, "rebuild graph from snapshot")
		}
		res, err := l.compute(ctx, next)
		if err != nil {
			return err
		}
		if tick != nil {
			tick(res.Update())
		}
		return nil
	}
	res.Hooks = layout.Hooks{OnAddNode: recompute, OnAddEdge: recompute}
	return res, nil
}

func (l *Layout) compute(ctx context.Context, g *simgraph.Graph) (*layout.Result, error) {
	res := &layout.Result{Layout: layout.Positions{}, EdgePoints: layout.EdgePoints{}}
	if g.Order() == 0 {
		return res, nil
	}

	d := stratify(g)
	resolved, err := tiers.Resolve(l.params.Tiers, g)
	if err != nil {
		return nil, err
	}
	keys, err := l.orderKeys(g, resolved)
	if err != nil {
		return nil, err
	}

	rank, err := l.rank(d, resolved)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLayoutFailed, err, "planar layering failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lg := build(d, rank)
	if len(keys) > 0 {
		index := make(map[int]int, len(keys))
		for i, id := range d.ids {
			if k, ok := keys[id]; ok {
				index[i] = k
			}
		}
		lg.setKeys(index)
	}
	lg.decross(l.params.DecrossPasses)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x := lg.coordinates(l.params.NodeSeparation)

	point := func(v int) layout.Point {
		p := layout.Point{X: x[v], Y: float64(lg.layer[v]) * l.params.TierSeparation}
		return layout.Oriented(p, l.params.Orientation)
	}
	for i, id := range d.ids {
		res.Layout[id] = point(i)
	}
	for _, c := range lg.chains {
		pts := make([]layout.Point, 0, max(len(c.path), 2))
		for _, v := range c.path {
			pts = append(pts, point(v))
		}
		if len(pts) == 1 {
			pts = append(pts, pts[0])
		}
		if c.reversed {
			slices.Reverse(pts)
		}
		res.EdgePoints[c.key] = pts
	}
	return res, nil
}

func (l *Layout) orderKeys(g *simgraph.Graph, resolved [][]string) (map[string]int, error) {
	path := l.params.Tiers.OrderPath()
	if path == "" || len(resolved) == 0 {
		return nil, nil
	}
	var ids []string
	for _, tier := range resolved {
		ids = append(ids, tier...)
	}
	return tiers.OrderInts(tiers.Order(ids, path, g))
}

// rank layers the stratified graph. Tier members are contracted into one
// vertex per tier and consecutive tiers are chained, so each tier shares a
// layer and tiers descend in order.
func (l *Layout) rank(d *dag, resolved [][]string) ([]int, error) {
	tierOf := tiers.Index(resolved)
	super := make([]int, len(d.ids))
	next := len(resolved)
	for i, id := range d.ids {
		if t, ok := tierOf[id]; ok {
			super[i] = t
			continue
		}
		super[i] = next
		next++
	}

	var links []link
	for t := 0; t+1 < len(resolved); t++ {
		links = append(links, link{from: t, to: t + 1})
	}
	for _, lk := range d.links {
		a, b := super[lk.from], super[lk.to]
		if a != b {
			links = append(links, link{from: a, to: b})
		}
	}
	if len(resolved) > 0 {
		breakCycles(next, links, 0)
	}

	edges := make([]rankEdge, len(links))
	for i, lk := range links {
		edges[i] = rankEdge{from: lk.from, to: lk.to, minlen: 1, weight: 1}
	}

	var contracted []int
	if l.params.Layering == layout.LayeringLongestPath {
		contracted = longestPath(next, edges)
	} else {
		var err error
		if contracted, err = networkSimplex(next, edges); err != nil {
			return nil, err
		}
	}

	rank := make([]int, len(d.ids))
	for i := range rank {
		rank[i] = contracted[super[i]]
	}
	return rank, nil
}
