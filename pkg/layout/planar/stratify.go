package planar

import (
	"github.com/matzehuels/graphlayout/pkg/check"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// link is one stored edge oriented for layering.
type link struct {
	from, to int
	key      string
	// reversed is true when from → to runs against the stored edge, so the
	// drawn polyline must be flipped.
	reversed bool
}

// dag is the stratified graph over node indices.
type dag struct {
	ids   []string
	links []link
	loops []int // nodes with self-loops
}

func stratify(g *simgraph.Graph) *dag {
	d := &dag{ids: g.Nodes()}
	index := make(map[string]int, len(d.ids))
	for i, id := range d.ids {
		index[id] = i
	}
	for _, e := range g.Edges() {
		key := simgraph.EdgeKey{Source: e.Source, Target: e.Target}.String()
		s, t := index[e.Source], index[e.Target]
		if s == t {
			d.loops = append(d.loops, s)
			continue
		}
		l := link{from: s, to: t, key: key}
		if check.EdgeType(e.Attributes) == graph.EdgeBackwardsDirected {
			l.from, l.to, l.reversed = t, s, true
		}
		d.links = append(d.links, l)
	}
	breakCycles(len(d.ids), d.links)
	return d
}

// breakCycles reverses DFS back edges in place until the links form a DAG.
// Roots are visited in the order first, then sources, then any remaining
// node. A node's links are followed in slice order, so a chain of links
// added first from the first root is never reversed.
func breakCycles(n int, links []link, first ...int) int {
	const (
		white = iota
		gray
		black
	)

	out := make([][]int, n) // node -> link indices
	indeg := make([]int, n)
	for i, l := range links {
		out[l.from] = append(out[l.from], i)
		indeg[l.to]++
	}

	color := make([]int, n)
	var back []int
	var dfs func(v int)
	dfs = func(v int) {
		color[v] = gray
		for _, li := range out[v] {
			w := links[li].to
			switch color[w] {
			case white:
				dfs(w)
			case gray:
				back = append(back, li)
			}
		}
		color[v] = black
	}

	for _, v := range first {
		if color[v] == white {
			dfs(v)
		}
	}
	for v := range n {
		if indeg[v] == 0 && color[v] == white {
			dfs(v)
		}
	}
	for v := range n {
		if color[v] == white {
			dfs(v)
		}
	}

	for _, li := range back {
		l := &links[li]
		l.from, l.to, l.reversed = l.to, l.from, !l.reversed
	}
	return len(back)
}
