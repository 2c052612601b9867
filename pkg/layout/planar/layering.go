package planar

import (
	"fmt"
	"slices"
)

// rankEdge is an edge of the layering problem: rank[to] - rank[from] >= minlen.
type rankEdge struct {
	from, to int
	minlen   int
	weight   float64
}

// longestPath ranks every vertex one below its deepest predecessor. The
// edges must be acyclic.
func longestPath(n int, edges []rankEdge) []int {
	rank := make([]int, n)
	indeg := make([]int, n)
	out := make([][]int, n)
	for i, e := range edges {
		out[e.from] = append(out[e.from], i)
		indeg[e.to]++
	}
	queue := make([]int, 0, n)
	for v := range n {
		if indeg[v] == 0 {
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, i := range out[v] {
			e := edges[i]
			if r := rank[v] + e.minlen; r > rank[e.to] {
				rank[e.to] = r
			}
			indeg[e.to]--
			if indeg[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}
	return rank
}

// networkSimplex computes a ranking minimising the weighted sum of edge
// spans subject to each edge's minimum length. The edges must be acyclic.
// Each weakly connected component is solved separately and normalised to
// start at rank 0.
func networkSimplex(n int, edges []rankEdge) ([]int, error) {
	rank := longestPath(n, edges)
	for _, comp := range components(n, edges) {
		if len(comp) < 2 {
			rank[comp[0]] = 0
			continue
		}
		ns := newSimplex(comp, edges, rank)
		if err := ns.solve(); err != nil {
			return nil, err
		}
		normalize(rank, comp)
	}
	for _, e := range edges {
		if rank[e.to]-rank[e.from] < e.minlen {
			return nil, fmt.Errorf("network simplex produced infeasible span on edge %d -> %d", e.from, e.to)
		}
	}
	return rank, nil
}

func normalize(rank []int, comp []int) {
	lo := rank[comp[0]]
	for _, v := range comp {
		lo = min(lo, rank[v])
	}
	for _, v := range comp {
		rank[v] -= lo
	}
}

// components returns weakly connected components in vertex order.
func components(n int, edges []rankEdge) [][]int {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(v int) int {
		for parent[v] != v {
			parent[v] = parent[parent[v]]
			v = parent[v]
		}
		return v
	}
	for _, e := range edges {
		a, b := find(e.from), find(e.to)
		if a != b {
			parent[max(a, b)] = min(a, b)
		}
	}
	groups := map[int][]int{}
	var roots []int
	for v := range n {
		r := find(v)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], v)
	}
	out := make([][]int, len(roots))
	for i, r := range roots {
		out[i] = groups[r]
	}
	return out
}

// simplex is the network simplex state for one connected component.
type simplex struct {
	nodes []int
	in    map[int]bool // component membership
	edges []int        // indices into all, restricted to the component
	all   []rankEdge
	rank  []int
	tree  map[int]bool // edge index -> in spanning tree
}

func newSimplex(nodes []int, all []rankEdge, rank []int) *simplex {
	s := &simplex{nodes: nodes, in: map[int]bool{}, all: all, rank: rank, tree: map[int]bool{}}
	for _, v := range nodes {
		s.in[v] = true
	}
	for i, e := range all {
		if s.in[e.from] {
			s.edges = append(s.edges, i)
		}
	}
	return s
}

func (s *simplex) slack(i int) int {
	e := s.all[i]
	return s.rank[e.to] - s.rank[e.from] - e.minlen
}

func (s *simplex) solve() error {
	if err := s.feasibleTree(); err != nil {
		return err
	}
	limit := 10 * len(s.all)
	for iter := 0; ; iter++ {
		leave := s.leaveEdge()
		if leave < 0 {
			return nil
		}
		if iter > limit {
			// Ranks stay feasible after every exchange; stop improving.
			return nil
		}
		enter := s.enterEdge(leave)
		if enter < 0 {
			return fmt.Errorf("network simplex: no entering edge for %d", leave)
		}
		delete(s.tree, leave)
		s.tree[enter] = true
		s.rerank()
	}
}

// feasibleTree grows a spanning tree of tight edges, shifting the tree's
// ranks to tighten the least-slack incident edge whenever growth stalls.
func (s *simplex) feasibleTree() error {
	inTree := map[int]bool{s.nodes[0]: true}
	for {
		s.growTight(inTree)
		if len(inTree) == len(s.nodes) {
			return nil
		}
		best, bestSlack := -1, 0
		for _, i := range s.edges {
			e := s.all[i]
			if inTree[e.from] == inTree[e.to] {
				continue
			}
			if sl := s.slack(i); best < 0 || sl < bestSlack {
				best, bestSlack = i, sl
			}
		}
		if best < 0 {
			return fmt.Errorf("network simplex: component is not connected")
		}
		delta := bestSlack
		if inTree[s.all[best].to] {
			delta = -delta
		}
		for v := range inTree {
			s.rank[v] += delta
		}
	}
}

func (s *simplex) growTight(inTree map[int]bool) {
	for changed := true; changed; {
		changed = false
		for _, i := range s.edges {
			e := s.all[i]
			if inTree[e.from] == inTree[e.to] || s.slack(i) != 0 {
				continue
			}
			s.tree[i] = true
			inTree[e.from], inTree[e.to] = true, true
			changed = true
		}
	}
}

// split removes tree edge i and labels the vertices reachable from its tail
// through the remaining tree edges.
func (s *simplex) split(i int) map[int]bool {
	adj := map[int][]int{}
	for j := range s.tree {
		if j == i {
			continue
		}
		e := s.all[j]
		adj[e.from] = append(adj[e.from], e.to)
		adj[e.to] = append(adj[e.to], e.from)
	}
	tail := map[int]bool{s.all[i].from: true}
	stack := []int{s.all[i].from}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range adj[v] {
			if !tail[w] {
				tail[w] = true
				stack = append(stack, w)
			}
		}
	}
	return tail
}

// cutValue is, for a tree split into tail and head components, the weight
// of edges crossing from tail to head minus the weight crossing back.
func (s *simplex) cutValue(tail map[int]bool) float64 {
	var v float64
	for _, j := range s.edges {
		e := s.all[j]
		switch {
		case tail[e.from] && !tail[e.to]:
			v += e.weight
		case !tail[e.from] && tail[e.to]:
			v -= e.weight
		}
	}
	return v
}

// leaveEdge returns the first tree edge, in edge order, with a negative cut
// value, or -1.
func (s *simplex) leaveEdge() int {
	for _, i := range s.sortedTree() {
		if s.cutValue(s.split(i)) < 0 {
			return i
		}
	}
	return -1
}

func (s *simplex) sortedTree() []int {
	out := make([]int, 0, len(s.tree))
	for i := range s.tree {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// enterEdge picks the non-tree edge of minimum slack that runs from the
// head component back into the tail component of leave.
func (s *simplex) enterEdge(leave int) int {
	tail := s.split(leave)
	best, bestSlack := -1, 0
	for _, i := range s.edges {
		if s.tree[i] {
			continue
		}
		e := s.all[i]
		if tail[e.from] || !tail[e.to] {
			continue
		}
		if sl := s.slack(i); best < 0 || sl < bestSlack {
			best, bestSlack = i, sl
		}
	}
	return best
}

// rerank recomputes ranks from the tree so every tree edge is tight.
func (s *simplex) rerank() {
	adj := map[int][]int{}
	for i := range s.tree {
		e := s.all[i]
		adj[e.from] = append(adj[e.from], i)
		adj[e.to] = append(adj[e.to], i)
	}
	root := s.nodes[0]
	seen := map[int]bool{root: true}
	stack := []int{root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, i := range adj[v] {
			e := s.all[i]
			w := e.to
			r := s.rank[v] + e.minlen
			if w == v {
				w = e.from
				r = s.rank[v] - e.minlen
			}
			if seen[w] {
				continue
			}
			seen[w] = true
			s.rank[w] = r
			stack = append(stack, w)
		}
	}
}
