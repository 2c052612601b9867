// Package storage persists declarative graphs for the HTTP API.
//
// Two backends implement [Store]: [MemoryStore] for tests and single-process
// servers, and [MongoStore] for shared deployments. Records carry a content
// hash, which the API uses as its layout cache key, and a revision counter
// that increments on every Put.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/graphlayout/pkg/cache"
	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
)

// Record is a stored graph.
type Record struct {
	ID        string      `json:"id" bson:"_id"`
	Graph     graph.Graph `json:"graph" bson:"graph"`
	Hash      string      `json:"hash" bson:"hash"`
	Revision  int64       `json:"revision" bson:"revision"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

// Store persists graphs by id.
type Store interface {
	// Put creates or replaces the graph stored under id.
	Put(ctx context.Context, id string, g graph.Graph) (*Record, error)
	// Get returns the record for id or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete removes id or returns a NOT_FOUND error.
	Delete(ctx context.Context, id string) error
	// List returns stored ids in ascending order.
	List(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// NewID returns a fresh graph id.
func NewID() string { return uuid.NewString() }

// Hash returns the content hash of g.
func Hash(g graph.Graph) (string, error) {
	data, err := graph.Marshal(g)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidGraph, err, "encode graph")
	}
	return cache.Hash(data), nil
}

// prepare validates id and g before a Put.
func prepare(id string, g graph.Graph) (string, error) {
	if err := errs.ValidateGraphID(id); err != nil {
		return "", err
	}
	if err := g.Validate(); err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidGraph, err, "graph %q", id)
	}
	return Hash(g)
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeNotFound, "graph %q not found", id)
}
