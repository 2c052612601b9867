package convert

import (
	"reflect"
	"slices"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

type parseOptions struct {
	availableInputs []string
	existing        *simgraph.Graph
}

// WithAvailableInputs enables latent inference: nodes that are neither
// listed here nor referenced by any edge are marked latent.
func WithAvailableInputs(ids []string) ParseOption {
	return func(o *parseOptions) { o.availableInputs = ids }
}

// WithExisting makes Parse diff into g instead of building a new graph.
// g is mutated in place and returned.
func WithExisting(g *simgraph.Graph) ParseOption {
	return func(o *parseOptions) { o.existing = g }
}

// Parse converts a declarative graph into a simulation graph.
//
// With WithExisting, nodes and edges whose attributes are unchanged (ignoring
// x, y, extras and category) are left untouched. Changed ones have their
// attributes replaced but keep their current x/y, unless the rendering x/y
// hint itself changed, in which case the hint wins. Extras-only changes are
// applied without emitting events. Nodes and edges missing from decl are
// dropped.
//
// Returns an INVALID_GRAPH error if decl has empty identifiers or edges
// referencing undeclared nodes. The existing graph is not modified in that
// case.
func Parse(decl graph.Graph, opts ...ParseOption) (*simgraph.Graph, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := validate(decl); err != nil {
		return nil, err
	}

	g := o.existing
	if g == nil {
		g = simgraph.New()
	}

	latent := latentNodes(decl, o.availableInputs)
	tsVars := timeSeriesVariables(decl)
	ids := decl.NodeIDs()

	for _, id := range ids {
		attrs := nodeAttributes(decl.Nodes[id], latent[id], tsVars[id])
		if err := syncNode(g, id, attrs); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "sync node %q", id)
		}
	}
	for _, id := range g.Nodes() {
		if _, ok := decl.Nodes[id]; !ok {
			_ = g.DropNode(id)
		}
	}

	for _, e := range decl.EdgeList() {
		if err := syncEdge(g, e.Source, e.Destination, edgeAttributes(e)); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "sync edge %q -> %q", e.Source, e.Destination)
		}
	}
	for _, e := range g.Edges() {
		if _, ok := decl.Edge(e.Source, e.Target); !ok {
			_ = g.DropEdge(e.Source, e.Target)
		}
	}

	if decl.Version != "" {
		g.SetAttribute(simgraph.AttrVersion, decl.Version)
	} else {
		g.SetAttribute(simgraph.AttrVersion, nil)
	}
	UpdateCategories(g)
	return g, nil
}

func validate(decl graph.Graph) error {
	for id, n := range decl.Nodes {
		if id == "" {
			return errs.New(errs.ErrCodeInvalidGraph, "node with empty identifier")
		}
		if n.Identifier != "" && n.Identifier != id {
			return errs.New(errs.ErrCodeInvalidGraph, "node %q declares identifier %q", id, n.Identifier)
		}
	}
	for src, targets := range decl.Edges {
		for dst, e := range targets {
			if (e.Source != "" && e.Source != src) || (e.Destination != "" && e.Destination != dst) {
				return errs.New(errs.ErrCodeInvalidGraph, "edge stored at %q -> %q declares %q -> %q", src, dst, e.Source, e.Destination)
			}
		}
	}
	if err := decl.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidGraph, err, "invalid graph")
	}
	return nil
}

func syncNode(g *simgraph.Graph, id string, attrs simgraph.Attributes) error {
	if attrs[simgraph.AttrIdentifier] == "" {
		attrs[simgraph.AttrIdentifier] = id
	}
	old, ok := g.NodeAttributes(id)
	if !ok {
		seedPosition(attrs)
		return g.AddNode(id, attrs)
	}
	if reflect.DeepEqual(layoutRelevant(old), layoutRelevant(attrs)) {
		mergeExtras(g, old, attrs)
		return nil
	}

	if hintChanged(old, attrs) {
		seedPosition(attrs)
	}
	for _, k := range []string{simgraph.AttrX, simgraph.AttrY, simgraph.AttrCategory} {
		if _, set := attrs[k]; set {
			continue
		}
		if v, has := old[k]; has {
			attrs[k] = v
		}
	}
	return g.ReplaceNodeAttributes(id, attrs)
}

func syncEdge(g *simgraph.Graph, src, dst string, attrs simgraph.Attributes) error {
	old, ok := g.EdgeAttributes(src, dst)
	if !ok {
		return g.AddEdge(src, dst, attrs)
	}
	if reflect.DeepEqual(layoutRelevant(old), layoutRelevant(attrs)) {
		mergeExtras(g, old, attrs)
		return nil
	}
	return g.ReplaceEdgeAttributes(src, dst, attrs)
}

// mergeExtras updates old's extras in place without emitting an event.
func mergeExtras(g *simgraph.Graph, old, attrs simgraph.Attributes) {
	if reflect.DeepEqual(old[simgraph.AttrExtras], attrs[simgraph.AttrExtras]) {
		return
	}
	g.Quietly(func() {
		if v, ok := attrs[simgraph.AttrExtras]; ok {
			old[simgraph.AttrExtras] = v
		} else {
			delete(old, simgraph.AttrExtras)
		}
	})
}

func hintChanged(old, attrs simgraph.Attributes) bool {
	for _, p := range []string{graph.PropX, graph.PropY} {
		k := simgraph.Rendering(p)
		if !reflect.DeepEqual(old[k], attrs[k]) {
			return true
		}
	}
	return false
}

// latentNodes returns the nodes that are neither available inputs nor
// referenced by an edge. Returns nil when inputs is nil.
func latentNodes(decl graph.Graph, inputs []string) map[string]bool {
	if inputs == nil {
		return nil
	}
	referenced := make(map[string]bool)
	for src, targets := range decl.Edges {
		if len(targets) > 0 {
			referenced[src] = true
		}
		for dst := range targets {
			referenced[dst] = true
		}
	}
	out := make(map[string]bool)
	for id := range decl.Nodes {
		if !slices.Contains(inputs, id) && !referenced[id] {
			out[id] = true
		}
	}
	return out
}

// timeSeriesVariables maps nodes to their shared variable_name when every
// node is a time-series node. Variables used by a single node are skipped.
func timeSeriesVariables(decl graph.Graph) map[string]string {
	if len(decl.Nodes) == 0 {
		return nil
	}
	names := make(map[string]string, len(decl.Nodes))
	counts := make(map[string]int)
	for id, n := range decl.Nodes {
		if n.NodeClass != graph.TimeSeriesNodeClass {
			return nil
		}
		if v, ok := n.Extras[graph.VariableNameKey].(string); ok && v != "" {
			names[id] = v
			counts[v]++
		}
	}
	out := make(map[string]string)
	for id, v := range names {
		if counts[v] > 1 {
			out[id] = v
		}
	}
	return out
}

// Category returns the force-layout category of a node: latent if flagged,
// target if it has only incoming edges, other otherwise.
func Category(g *simgraph.Graph, id string) string {
	attrs, _ := g.NodeAttributes(id)
	switch {
	case attrs.Bool(simgraph.Rendering(graph.PropLatent)):
		return simgraph.CategoryLatent
	case g.OutDegree(id) == 0 && g.InDegree(id) > 0:
		return simgraph.CategoryTarget
	default:
		return simgraph.CategoryOther
	}
}

// UpdateCategories recomputes every node's category. Changes are applied
// without emitting events.
func UpdateCategories(g *simgraph.Graph) {
	g.Quietly(func() {
		for _, id := range g.Nodes() {
			c := Category(g, id)
			attrs, _ := g.NodeAttributes(id)
			if attrs[simgraph.AttrCategory] != c {
				attrs[simgraph.AttrCategory] = c
			}
		}
	})
}
