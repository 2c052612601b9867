package convert

import (
	"maps"
	"strings"

	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// flattenMeta writes meta's rendering properties into attrs under prefixed
// keys and stores the remainder as originalMeta.
func flattenMeta(attrs simgraph.Attributes, meta graph.Meta) {
	if meta == nil {
		return
	}
	rest := make(map[string]any, len(meta))
	for k, v := range meta {
		if k == graph.RenderingPropertiesKey {
			continue
		}
		rest[k] = v
	}
	attrs[simgraph.AttrOriginalMeta] = map[string]any(simgraph.Attributes(rest).Clone())
	for k, v := range meta.RenderingProperties() {
		attrs[simgraph.Rendering(k)] = v
	}
}

// unflattenMeta rebuilds a meta object from originalMeta and the prefixed
// rendering keys. Returns nil when there is nothing to write.
func unflattenMeta(attrs simgraph.Attributes) graph.Meta {
	var meta graph.Meta
	if orig, ok := attrs[simgraph.AttrOriginalMeta].(map[string]any); ok {
		meta = graph.Meta(simgraph.Attributes(orig).Clone())
	} else if orig, ok := attrs[simgraph.AttrOriginalMeta].(simgraph.Attributes); ok {
		meta = graph.Meta(orig.Clone())
	}
	rp := map[string]any{}
	for k, v := range attrs {
		if prop, ok := strings.CutPrefix(k, simgraph.RenderingPrefix); ok {
			rp[prop] = v
		}
	}
	if len(rp) == 0 {
		return meta
	}
	if meta == nil {
		meta = graph.Meta{}
	}
	meta[graph.RenderingPropertiesKey] = rp
	return meta
}

func nodeAttributes(n graph.Node, latent bool, tsVariable string) simgraph.Attributes {
	attrs := simgraph.Attributes{simgraph.AttrIdentifier: n.Identifier}
	if n.NodeClass != "" {
		attrs[simgraph.AttrNodeClass] = n.NodeClass
	}
	flattenMeta(attrs, n.Meta)
	if latent {
		attrs[simgraph.Rendering(graph.PropLatent)] = true
	}
	if n.Extras != nil {
		attrs[simgraph.AttrExtras] = map[string]any(simgraph.Attributes(n.Extras).Clone())
	}
	if tsVariable != "" {
		attrs[simgraph.AttrTimeSeriesVariable] = tsVariable
	}
	return attrs
}

func edgeAttributes(e graph.Edge) simgraph.Attributes {
	et := e.EdgeType
	if et == "" {
		et = graph.EdgeDirected
	}
	attrs := simgraph.Attributes{
		simgraph.AttrSource:      e.Source,
		simgraph.AttrDestination: e.Destination,
		simgraph.AttrEdgeType:    string(et),
	}
	flattenMeta(attrs, e.Meta)
	if e.Extras != nil {
		attrs[simgraph.AttrExtras] = map[string]any(simgraph.Attributes(e.Extras).Clone())
	}
	return attrs
}

// seedPosition copies rendering x/y hints into x/y.
func seedPosition(attrs simgraph.Attributes) {
	x, okX := simgraph.ToFloat(attrs[simgraph.Rendering(graph.PropX)])
	y, okY := simgraph.ToFloat(attrs[simgraph.Rendering(graph.PropY)])
	if okX && okY {
		attrs[simgraph.AttrX] = x
		attrs[simgraph.AttrY] = y
	}
}

// layoutRelevant returns attrs without the keys that never trigger a replace.
func layoutRelevant(attrs simgraph.Attributes) simgraph.Attributes {
	out := maps.Clone(attrs)
	for _, k := range ignoredKeys {
		delete(out, k)
	}
	return out
}

var ignoredKeys = []string{
	simgraph.AttrX,
	simgraph.AttrY,
	simgraph.AttrExtras,
	simgraph.AttrCategory,
}

// NodeAttributes flattens one declarative node, seeding x/y from its
// rendering hints. Latent inference needs the whole graph and is not done.
func NodeAttributes(n graph.Node) simgraph.Attributes {
	attrs := nodeAttributes(n, false, "")
	seedPosition(attrs)
	return attrs
}

// EdgeAttributes flattens one declarative edge.
func EdgeAttributes(e graph.Edge) simgraph.Attributes { return edgeAttributes(e) }
