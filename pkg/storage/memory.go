package storage

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/graphlayout/pkg/graph"
)

// MemoryStore keeps graphs in process memory. Graphs are stored encoded so
// callers never share maps with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	Record
	data []byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord), now: time.Now}
}

func (s *MemoryStore) Put(ctx context.Context, id string, g graph.Graph) (*Record, error) {
	hash, err := prepare(id, g)
	if err != nil {
		return nil, err
	}
	data, err := graph.Marshal(g)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	rec := s.records[id]
	if rec.ID == "" {
		rec.ID = id
		rec.CreatedAt = now
	}
	rec.Hash = hash
	rec.Revision++
	rec.UpdatedAt = now
	rec.data = data
	s.records[id] = rec
	return s.decode(rec)
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return s.decode(rec)
}

func (s *MemoryStore) decode(rec memoryRecord) (*Record, error) {
	g, err := graph.Unmarshal(rec.data)
	if err != nil {
		return nil, err
	}
	out := rec.Record
	out.Graph = g
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.records)), nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
