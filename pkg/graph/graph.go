package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal converts a declarative graph to indented JSON bytes.
// encoding/json sorts map keys, so output is deterministic.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a declarative graph from JSON bytes.
func Unmarshal(data []byte) (Graph, error) {
	return readGraphFrom(bytes.NewReader(data))
}

// WriteFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// Write writes a graph as JSON to an io.Writer.
func Write(g Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadFile reads a JSON file and returns the decoded graph.
// Returns an error for malformed JSON or edges referencing unknown nodes.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// Read decodes a JSON graph from an io.Reader.
func Read(r io.Reader) (Graph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g Graph, w io.Writer) error {
	if g.Nodes == nil {
		g.Nodes = map[string]Node{}
	}
	if g.Edges == nil {
		g.Edges = map[string]map[string]Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = map[string]Node{}
	}
	if g.Edges == nil {
		g.Edges = map[string]map[string]Edge{}
	}
	for id, n := range g.Nodes {
		if n.Identifier == "" {
			n.Identifier = id
			g.Nodes[id] = n
		}
	}
	for src, targets := range g.Edges {
		for dst, e := range targets {
			if e.Source == "" || e.Destination == "" {
				e.Source, e.Destination = src, dst
				targets[dst] = e
			}
		}
	}
	if err := g.Validate(); err != nil {
		return Graph{}, fmt.Errorf("validate: %w", err)
	}
	return g, nil
}
