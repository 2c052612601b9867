package convert

import (
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Serialize converts a simulation graph back to the declarative form.
//
// Current x/y positions are written to meta.rendering_properties. Edges of
// type backwards_directed are emitted as directed edges with swapped
// endpoints, stored under edges[destination][source].
func Serialize(g *simgraph.Graph) graph.Graph {
	out := graph.New()
	out.Version = g.Attributes().Str(simgraph.AttrVersion)
	for _, id := range g.Nodes() {
		attrs, _ := g.NodeAttributes(id)
		out.Nodes[id] = serializeNode(id, attrs)
	}
	for _, e := range g.Edges() {
		out.SetEdge(serializeEdge(e))
	}
	return out
}

func serializeNode(id string, attrs simgraph.Attributes) graph.Node {
	n := graph.Node{
		Identifier: attrs.Str(simgraph.AttrIdentifier),
		NodeClass:  attrs.Str(simgraph.AttrNodeClass),
		Meta:       unflattenMeta(attrs),
		Extras:     extras(attrs),
	}
	if n.Identifier == "" {
		n.Identifier = id
	}
	if x, y, ok := attrs.Position(); ok {
		if n.Meta == nil {
			n.Meta = graph.Meta{}
		}
		rp := n.Meta.RenderingProperties()
		if rp == nil {
			rp = map[string]any{}
			n.Meta[graph.RenderingPropertiesKey] = rp
		}
		rp[graph.PropX] = x
		rp[graph.PropY] = y
	}
	return n
}

func serializeEdge(e simgraph.Edge) graph.Edge {
	out := graph.Edge{
		Source:      e.Source,
		Destination: e.Target,
		EdgeType:    graph.EdgeType(e.Attributes.Str(simgraph.AttrEdgeType)),
		Meta:        unflattenMeta(e.Attributes),
		Extras:      extras(e.Attributes),
	}
	switch out.EdgeType {
	case "":
		out.EdgeType = graph.EdgeDirected
	case graph.EdgeBackwardsDirected:
		out.EdgeType = graph.EdgeDirected
		out.Source, out.Destination = out.Destination, out.Source
	}
	return out
}

func extras(attrs simgraph.Attributes) map[string]any {
	switch v := attrs[simgraph.AttrExtras].(type) {
	case simgraph.Attributes:
		return v.Clone()
	case map[string]any:
		return simgraph.Attributes(v).Clone()
	}
	return nil
}
