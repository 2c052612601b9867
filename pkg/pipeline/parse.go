package pipeline

import (
	"github.com/matzehuels/graphlayout/pkg/cache"
	"github.com/matzehuels/graphlayout/pkg/convert"
	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Parse flattens the declarative graph into a simulation graph.
func Parse(opts Options) (*simgraph.Graph, error) {
	return convert.Parse(opts.Graph, convert.WithAvailableInputs(opts.AvailableInputs))
}

// GraphHash returns the content hash used in cache keys. Available inputs
// change latent inference, so they are part of the hash.
func GraphHash(opts Options) (string, error) {
	data, err := graph.Marshal(opts.Graph)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidGraph, err, "encode graph")
	}
	for _, in := range opts.AvailableInputs {
		data = append(data, 0)
		data = append(data, in...)
	}
	return cache.Hash(data), nil
}
