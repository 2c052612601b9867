package planar

import (
	"slices"

	"github.com/matzehuels/graphlayout/pkg/layout"
)

// layered is the proper layered graph: every segment joins adjacent layers.
// Vertices below real are original nodes; the rest are dummies.
type layered struct {
	real   int
	layer  []int
	down   [][]int
	up     [][]int
	layers [][]int
	pos    []int // position of each vertex within its layer
	chains []chain
	keys   map[int]int
}

// chain is the vertex path of one stored edge, top to bottom.
type chain struct {
	key      string
	path     []int
	reversed bool
}

// build subdivides every link by its layer span. Links whose endpoints share
// a layer become flat two-vertex chains without segments.
func build(d *dag, rank []int) *layered {
	n := len(d.ids)
	lg := &layered{
		real:  n,
		layer: slices.Clone(rank),
		down:  make([][]int, n),
		up:    make([][]int, n),
	}
	for _, v := range d.loops {
		lg.chains = append(lg.chains, chain{key: layout.EdgeKey(d.ids[v], d.ids[v]), path: []int{v}})
	}
	for _, l := range d.links {
		from, to, rev := l.from, l.to, l.reversed
		if rank[from] > rank[to] {
			from, to, rev = to, from, !rev
		}
		c := chain{key: l.key, path: []int{from}, reversed: rev}
		prev := from
		for r := rank[from] + 1; r < rank[to]; r++ {
			v := lg.addDummy(r)
			lg.link(prev, v)
			c.path = append(c.path, v)
			prev = v
		}
		if rank[from] != rank[to] {
			lg.link(prev, to)
		}
		c.path = append(c.path, to)
		lg.chains = append(lg.chains, c)
	}

	depth := 0
	for _, r := range lg.layer {
		depth = max(depth, r+1)
	}
	lg.layers = make([][]int, depth)
	lg.pos = make([]int, len(lg.layer))
	for v, r := range lg.layer {
		lg.pos[v] = len(lg.layers[r])
		lg.layers[r] = append(lg.layers[r], v)
	}
	return lg
}

func (lg *layered) addDummy(r int) int {
	lg.layer = append(lg.layer, r)
	lg.down = append(lg.down, nil)
	lg.up = append(lg.up, nil)
	return len(lg.layer) - 1
}

func (lg *layered) link(u, v int) {
	lg.down[u] = append(lg.down[u], v)
	lg.up[v] = append(lg.up[v], u)
}

func (lg *layered) isDummy(v int) bool { return v >= lg.real }

// =============================================================================
// Decrossing
// =============================================================================

// setKeys installs within-layer order keys for real vertices and applies
// them to the current ordering.
func (lg *layered) setKeys(keys map[int]int) {
	lg.keys = keys
	for i := range lg.layers {
		lg.applyKeys(lg.layers[i])
		lg.reindex(i)
	}
}

// applyKeys permutes keyed vertices among the slots keyed vertices occupy
// so they appear in key order. Unkeyed vertices keep their slots.
func (lg *layered) applyKeys(order []int) {
	if len(lg.keys) == 0 {
		return
	}
	var slots, keyed []int
	for i, v := range order {
		if _, ok := lg.keys[v]; ok {
			slots = append(slots, i)
			keyed = append(keyed, v)
		}
	}
	slices.SortStableFunc(keyed, func(a, b int) int { return lg.keys[a] - lg.keys[b] })
	for i, s := range slots {
		order[s] = keyed[i]
	}
}

func (lg *layered) reindex(layer int) {
	for i, v := range lg.layers[layer] {
		lg.pos[v] = i
	}
}

// sweep reorders every layer by the barycenter of its neighbours in the
// previous layer of the sweep direction. Vertices without such neighbours
// keep their current position as barycenter.
func (lg *layered) sweep(downward bool) {
	if downward {
		for i := 1; i < len(lg.layers); i++ {
			lg.reorder(i, lg.up)
		}
		return
	}
	for i := len(lg.layers) - 2; i >= 0; i-- {
		lg.reorder(i, lg.down)
	}
}

func (lg *layered) reorder(layer int, adj [][]int) {
	order := lg.layers[layer]
	bary := make(map[int]float64, len(order))
	for _, v := range order {
		nbrs := adj[v]
		if len(nbrs) == 0 {
			bary[v] = float64(lg.pos[v])
			continue
		}
		var sum float64
		for _, w := range nbrs {
			sum += float64(lg.pos[w])
		}
		bary[v] = sum / float64(len(nbrs))
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case bary[a] < bary[b]:
			return -1
		case bary[a] > bary[b]:
			return 1
		}
		return 0
	})
	lg.applyKeys(order)
	lg.reindex(layer)
}

// decross runs up to passes alternating sweeps and keeps the ordering with
// the fewest crossings.
func (lg *layered) decross(passes int) int {
	best := lg.snapshot()
	bestCount := lg.crossings()
	for pass := 0; pass < passes && bestCount > 0; pass++ {
		lg.sweep(pass%2 == 0)
		if c := lg.crossings(); c < bestCount {
			best, bestCount = lg.snapshot(), c
		}
	}
	lg.layers = best
	for i := range lg.layers {
		lg.reindex(i)
	}
	return bestCount
}

func (lg *layered) snapshot() [][]int {
	out := make([][]int, len(lg.layers))
	for i, l := range lg.layers {
		out[i] = slices.Clone(l)
	}
	return out
}

// crossings counts segment crossings over all pairs of adjacent layers.
func (lg *layered) crossings() int {
	total := 0
	for i := 0; i+1 < len(lg.layers); i++ {
		total += lg.layerCrossings(lg.layers[i], len(lg.layers[i+1]))
	}
	return total
}

// layerCrossings counts inversions among the segments leaving upper, taken
// in upper order with targets sorted, using a Fenwick tree over lower
// positions.
func (lg *layered) layerCrossings(upper []int, width int) int {
	if len(upper) == 0 || width == 0 {
		return 0
	}
	fenwick := make([]int, width+1)
	crossings, total := 0, 0
	targets := make([]int, 0, 4)
	for _, u := range upper {
		targets = targets[:0]
		for _, w := range lg.down[u] {
			targets = append(targets, lg.pos[w])
		}
		slices.Sort(targets)
		for _, t := range targets {
			lessOrEqual := 0
			for q := t + 1; q > 0; q -= q & (-q) {
				lessOrEqual += fenwick[q]
			}
			crossings += total - lessOrEqual
		}
		for _, t := range targets {
			total++
			for idx := t + 1; idx < len(fenwick); idx += idx & (-idx) {
				fenwick[idx]++
			}
		}
	}
	return crossings
}
