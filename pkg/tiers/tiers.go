package tiers

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Grouping is the result of grouping nodes by an attribute path.
type Grouping struct {
	// Keys lists group keys in discovery order.
	Keys []string
	// Members maps a group key to its nodes, in input order.
	Members map[string][]string
	// ByNode maps a node to its group key.
	ByNode map[string]string
}

// Groups groups nodes by the value at path. Nodes without a value and
// nodes missing from g are skipped.
func Groups(nodes []string, path string, g *simgraph.Graph) Grouping {
	gr := Grouping{Members: map[string][]string{}, ByNode: map[string]string{}}
	for _, n := range nodes {
		attrs, ok := g.NodeAttributes(n)
		if !ok {
			continue
		}
		v, ok := Lookup(attrs, path)
		if !ok {
			continue
		}
		k := Key(v)
		if _, seen := gr.Members[k]; !seen {
			gr.Keys = append(gr.Keys, k)
		}
		gr.Members[k] = append(gr.Members[k], n)
		gr.ByNode[n] = k
	}
	return gr
}

// Resolve turns spec into ordered tiers of node ids.
//
// Explicit tiers are filtered to nodes present in g and emptied tiers are
// dropped. Descriptor tiers group every node of g; with a rank list only the
// ranked groups are emitted, in rank order, and any ranked group that no
// node belongs to yields an INVALID_TIERS error naming all of them. Without
// a rank, groups appear in discovery order.
//
// The zero Spec resolves to nil.
func Resolve(spec Spec, g *simgraph.Graph) ([][]string, error) {
	switch {
	case spec.Descriptor != nil:
		return resolveDescriptor(*spec.Descriptor, g)
	case spec.Explicit != nil:
		var out [][]string
		for _, tier := range spec.Explicit {
			kept := slices.DeleteFunc(slices.Clone(tier), func(id string) bool { return !g.HasNode(id) })
			if len(kept) > 0 {
				out = append(out, kept)
			}
		}
		return out, nil
	}
	return nil, nil
}

func resolveDescriptor(d Descriptor, g *simgraph.Graph) ([][]string, error) {
	if d.Group == "" {
		return nil, errs.New(errs.ErrCodeInvalidTiers, "tiers descriptor has no group path")
	}
	gr := Groups(g.Nodes(), d.Group, g)
	if len(d.Rank) == 0 {
		out := make([][]string, 0, len(gr.Keys))
		for _, k := range gr.Keys {
			out = append(out, gr.Members[k])
		}
		return out, nil
	}

	var missing []string
	out := make([][]string, 0, len(d.Rank))
	for _, k := range d.Rank {
		members, ok := gr.Members[k]
		if !ok {
			missing = append(missing, k)
			continue
		}
		out = append(out, members)
	}
	if len(missing) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidTiers,
			"group(s) not found among nodes grouped by %q: %s", d.Group, strings.Join(missing, ", "))
	}
	return out, nil
}

// Order returns the within-tier ordering key of each node that has a value
// at path.
func Order(nodes []string, path string, g *simgraph.Graph) map[string]string {
	out := make(map[string]string)
	for _, n := range nodes {
		attrs, ok := g.NodeAttributes(n)
		if !ok {
			continue
		}
		if v, ok := Lookup(attrs, path); ok {
			out[n] = Key(v)
		}
	}
	return out
}

// OrderInts parses order keys as integers. Any non-integer key is an
// INVALID_ORDER error.
func OrderInts(order map[string]string) (map[string]int, error) {
	out := make(map[string]int, len(order))
	for _, n := range slices.Sorted(maps.Keys(order)) {
		i, err := strconv.Atoi(strings.TrimSpace(order[n]))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidOrder, err, "order value %q of node %q is not an integer", order[n], n)
		}
		out[n] = i
	}
	return out, nil
}

// Index maps each node to the index of its tier.
func Index(tiers [][]string) map[string]int {
	out := make(map[string]int)
	for i, tier := range tiers {
		for _, n := range tier {
			out[n] = i
		}
	}
	return out
}
