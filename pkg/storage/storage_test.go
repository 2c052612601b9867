package storage

import (
	"context"
	"slices"
	"testing"
	"time"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
)

func twoNodes() graph.Graph {
	return graph.Graph{
		Nodes: map[string]graph.Node{
			"A": {Identifier: "A"},
			"B": {Identifier: "B", Extras: map[string]any{"owner": "ops"}},
		},
		Edges: map[string]map[string]graph.Edge{
			"A": {"B": {Source: "A", Destination: "B"}},
		},
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	now := t0
	s.now = func() time.Time { return now }

	rec, err := s.Put(ctx, "g1", twoNodes())
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if rec.Revision != 1 || rec.Hash == "" || !rec.CreatedAt.Equal(t0) {
		t.Errorf("Put() = %+v", rec)
	}

	now = t0.Add(time.Minute)
	g := twoNodes()
	delete(g.Edges, "A")
	rec2, err := s.Put(ctx, "g1", g)
	if err != nil {
		t.Fatalf("Put(update) error: %v", err)
	}
	if rec2.Revision != 2 || rec2.Hash == rec.Hash {
		t.Errorf("update: revision %d, hash changed %v", rec2.Revision, rec2.Hash != rec.Hash)
	}
	if !rec2.CreatedAt.Equal(t0) || !rec2.UpdatedAt.Equal(now) {
		t.Errorf("update timestamps = %v / %v", rec2.CreatedAt, rec2.UpdatedAt)
	}

	got, err := s.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Graph.EdgeCount() != 0 || got.Graph.Nodes["B"].Extras["owner"] != "ops" {
		t.Errorf("Get().Graph = %+v", got.Graph)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if _, err := s.Put(ctx, "g", twoNodes()); err != nil {
		t.Fatal(err)
	}
	a, _ := s.Get(ctx, "g")
	delete(a.Graph.Nodes, "A")
	b, _ := s.Get(ctx, "g")
	if _, ok := b.Graph.Nodes["A"]; !ok {
		t.Error("mutating a returned graph changed the store")
	}
}

func TestMemoryStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	bad := twoNodes()
	bad.Edges["A"]["Z"] = graph.Edge{Source: "A", Destination: "Z"}

	tests := []struct {
		name string
		err  error
		code errs.Code
	}{
		{"get missing", func() error { _, err := s.Get(ctx, "nope"); return err }(), errs.ErrCodeNotFound},
		{"delete missing", s.Delete(ctx, "nope"), errs.ErrCodeNotFound},
		{"traversal id", func() error { _, err := s.Put(ctx, "../etc", twoNodes()); return err }(), errs.ErrCodeInvalidPath},
		{"empty id", func() error { _, err := s.Put(ctx, "", twoNodes()); return err }(), errs.ErrCodeInvalidPath},
		{"dangling edge", func() error { _, err := s.Put(ctx, "g", bad); return err }(), errs.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errs.GetCode(tt.err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, tt.err)
			}
		})
	}
}

func TestMemoryStoreListDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, id := range []string{"c", "a", "b"} {
		if _, err := s.Put(ctx, id, twoNodes()); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	ids, _ := s.List(ctx)
	if !slices.Equal(ids, []string{"a", "c"}) {
		t.Errorf("List() = %v, want [a c]", ids)
	}
}

func TestHashIgnoresMapOrder(t *testing.T) {
	h1, err := Hash(twoNodes())
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := Hash(twoNodes())
	if h1 != h2 {
		t.Error("Hash is not deterministic")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("NewID returned a duplicate")
	}
	if err := errs.ValidateGraphID(a); err != nil {
		t.Errorf("NewID() = %q is not a valid graph id: %v", a, err)
	}
}
