package check

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// EdgeType returns the edge type stored on an edge. Missing values are
// directed.
func EdgeType(attrs simgraph.Attributes) graph.EdgeType {
	t := graph.EdgeType(attrs.Str(simgraph.AttrEdgeType))
	if t == "" {
		return graph.EdgeDirected
	}
	return t
}

// EffectiveEdges returns the directed edges of g in the direction their
// arrow points. Backwards edges are flipped and undirected edges omitted.
// Order follows g's edge insertion order.
func EffectiveEdges(g *simgraph.Graph) []simgraph.EdgeKey {
	var out []simgraph.EdgeKey
	for _, e := range g.Edges() {
		switch EdgeType(e.Attributes) {
		case graph.EdgeDirected:
			out = append(out, simgraph.EdgeKey{Source: e.Source, Target: e.Target})
		case graph.EdgeBackwardsDirected:
			out = append(out, simgraph.EdgeKey{Source: e.Target, Target: e.Source})
		}
	}
	return out
}

// WouldCreateCycle reports whether adding the directed edge source → target
// would close a directed cycle. Any existing edge between the two nodes, in
// either direction, is ignored, so the call also answers whether reversing
// an edge is safe. Self-loops always return true. Nodes that do not exist
// yet are treated as isolated.
//
// g is not modified.
func WouldCreateCycle(g *simgraph.Graph, source, target string) bool {
	if source == target {
		return true
	}
	scratch := g.Clone()
	_ = scratch.DropEdge(source, target)
	_ = scratch.DropEdge(target, source)
	for _, id := range []string{source, target} {
		if !scratch.HasNode(id) {
			_ = scratch.AddNode(id, nil)
		}
	}
	_ = scratch.AddEdge(source, target, simgraph.Attributes{simgraph.AttrEdgeType: string(graph.EdgeDirected)})

	// Walk upward from target over inbound effective edges. Reaching target
	// again means target already reaches source.
	inbound := make(map[string][]string)
	for _, e := range EffectiveEdges(scratch) {
		inbound[e.Target] = append(inbound[e.Target], e.Source)
	}
	visited := map[string]bool{}
	stack := slices.Clone(inbound[target])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == target {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, inbound[n]...)
	}
	return false
}

// IsDAG reports whether g is acyclic and every edge is a plain directed
// edge. Undirected or backwards_directed edges disqualify the graph.
func IsDAG(g *simgraph.Graph) bool {
	for _, e := range g.Edges() {
		if EdgeType(e.Attributes) != graph.EdgeDirected {
			return false
		}
	}
	return len(CyclicComponents(g)) == 0
}

// CyclicComponents returns the strongly connected components of g's
// effective directed edges that contain a cycle, including self-loops.
// Node keys within each component are sorted. Returns nil for acyclic
// graphs.
func CyclicComponents(g *simgraph.Graph) [][]string {
	ids := make(map[string]int64, g.Order())
	keys := g.Nodes()
	dg := simple.NewDirectedGraph()
	for i, k := range keys {
		ids[k] = int64(i)
		dg.AddNode(simple.Node(i))
	}

	var out [][]string
	for _, e := range EffectiveEdges(g) {
		if e.Source == e.Target {
			out = append(out, []string{e.Source})
			continue
		}
		dg.SetEdge(dg.NewEdge(dg.Node(ids[e.Source]), dg.Node(ids[e.Target])))
	}

	if _, err := topo.Sort(dg); err != nil {
		if unorderable, ok := err.(topo.Unorderable); ok {
			for _, component := range unorderable {
				names := make([]string, 0, len(component))
				for _, n := range component {
					names = append(names, keys[n.ID()])
				}
				slices.Sort(names)
				out = append(out, names)
			}
		}
	}
	return out
}
