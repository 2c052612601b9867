// Package editor keeps the internal simulation graph of one editing session.
//
// A [Session] owns its graph: every mutation happens under the session lock.
// One mutation listener watches the graph. Structural changes schedule a
// debounced serialization handed to the OnChange callback, and node or edge
// additions are forwarded to the layout engine's onAddNode/onAddEdge hooks
// so running simulations pick them up. Position updates streamed by the
// engine are applied to the render state and written onto the nodes without
// triggering either.
//
// Edge edits are checked with check.WouldCreateCycle first; a rejected edit
// leaves the graph untouched.
package editor

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphlayout/pkg/check"
	"github.com/matzehuels/graphlayout/pkg/convert"
	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/host"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Engine runs layouts for a session. *host.Host implements it.
type Engine interface {
	Compute(ctx context.Context, p layout.Params, s simgraph.Snapshot) (layout.Update, error)
	AddNode(ctx context.Context, s simgraph.Snapshot) error
	AddEdge(ctx context.Context, s simgraph.Snapshot) error
	Close()
}

// EngineFactory builds an engine delivering streamed updates to apply.
type EngineFactory func(apply func(layout.Update)) Engine

// Options configures a Session.
type Options struct {
	// OnChange receives the serialized graph after structural changes.
	OnChange func(graph.Graph)
	// Debounce delays OnChange. Defaults to 50ms.
	Debounce time.Duration
	// AvailableInputs enables latent inference on Sync.
	AvailableInputs []string
	// Engine builds the layout engine. Defaults to a host.Host.
	Engine EngineFactory
	Logger *log.Logger
}

// Session is one editing session.
type Session struct {
	opts   Options
	log    *log.Logger
	engine Engine

	mu          sync.Mutex
	g           *simgraph.Graph
	render      layout.Update
	timer       *time.Timer
	addedNodes  bool
	addedEdges  bool
	unsubscribe func()
	closed      bool
}

// Open parses decl into a new session.
func Open(decl graph.Graph, opts Options) (*Session, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 50 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	g, err := convert.Parse(decl, convert.WithAvailableInputs(opts.AvailableInputs))
	if err != nil {
		return nil, err
	}

	s := &Session{
		opts:   opts,
		log:    opts.Logger,
		g:      g,
		render: layout.Update{Layout: layout.Existing(g), EdgePoints: layout.EdgePoints{}},
	}
	factory := opts.Engine
	if factory == nil {
		factory = func(apply func(layout.Update)) Engine {
			return host.New(apply, host.WithLogger(opts.Logger))
		}
	}
	s.engine = factory(s.Apply)
	s.unsubscribe = g.OnMutated(s.mutated)
	return s, nil
}

// mutated runs under s.mu, inside the mutating call.
func (s *Session) mutated(e simgraph.Event) {
	if !e.Type.Structural() {
		return
	}
	switch e.Type {
	case simgraph.NodeAdded:
		s.addedNodes = true
	case simgraph.EdgeAdded:
		s.addedEdges = true
	case simgraph.NodeDropped:
		delete(s.render.Layout, e.Node)
	case simgraph.EdgeDropped:
		delete(s.render.EdgePoints, layout.EdgeKey(e.Source, e.Target))
	case simgraph.Cleared:
		s.render = layout.Update{Layout: layout.Positions{}, EdgePoints: layout.EdgePoints{}}
	}
	s.schedule()
}

func (s *Session) schedule() {
	if s.opts.OnChange == nil || s.closed {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.opts.Debounce, s.emit)
		return
	}
	s.timer.Reset(s.opts.Debounce)
}

func (s *Session) emit() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	decl := convert.Serialize(s.g)
	s.mu.Unlock()
	s.opts.OnChange(decl)
}

// forward hands pending additions to the engine.
func (s *Session) forward(ctx context.Context) error {
	s.mu.Lock()
	nodes, edges := s.addedNodes, s.addedEdges
	s.addedNodes, s.addedEdges = false, false
	var snap simgraph.Snapshot
	if nodes || edges {
		snap = s.g.Export()
	}
	s.mu.Unlock()

	if nodes {
		if err := s.engine.AddNode(ctx, snap); err != nil {
			return err
		}
	}
	if edges {
		if err := s.engine.AddEdge(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

// mutate runs fn under the lock, refreshes categories and forwards
// additions.
func (s *Session) mutate(ctx context.Context, fn func(g *simgraph.Graph) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.New(errs.ErrCodeClosed, "editor session is closed")
	}
	err := fn(s.g)
	if err == nil {
		convert.UpdateCategories(s.g)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.forward(ctx)
}

// Sync diffs decl into the session graph. Unchanged nodes keep their
// positions.
func (s *Session) Sync(ctx context.Context, decl graph.Graph) error {
	return s.mutate(ctx, func(g *simgraph.Graph) error {
		_, err := convert.Parse(decl, convert.WithExisting(g), convert.WithAvailableInputs(s.opts.AvailableInputs))
		return err
	})
}

// AddNode adds a node.
func (s *Session) AddNode(ctx context.Context, n graph.Node) error {
	return s.mutate(ctx, func(g *simgraph.Graph) error {
		if err := errs.ValidateNodeID(n.Identifier); err != nil {
			return err
		}
		if err := g.AddNode(n.Identifier, convert.NodeAttributes(n)); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidGraph, err, "add node %q", n.Identifier)
		}
		return nil
	})
}

// RemoveNode removes a node and its edges.
func (s *Session) RemoveNode(ctx context.Context, id string) error {
	return s.mutate(ctx, func(g *simgraph.Graph) error {
		if err := g.DropNode(id); err != nil {
			return errs.Wrap(errs.ErrCodeNotFound, err, "remove node %q", id)
		}
		return nil
	})
}

// AddEdge adds e unless it would close a cycle.
func (s *Session) AddEdge(ctx context.Context, e graph.Edge) error {
	return s.mutate(ctx, func(g *simgraph.Graph) error {
		if e.EdgeType == "" {
			e.EdgeType = graph.EdgeDirected
		}
		if !g.HasNode(e.Source) || !g.HasNode(e.Destination) {
			return errs.New(errs.ErrCodeInvalidGraph, "edge %q -> %q references an unknown node", e.Source, e.Destination)
		}
		if g.HasEdge(e.Source, e.Destination) {
			return errs.New(errs.ErrCodeInvalidGraph, "edge %q -> %q already exists", e.Source, e.Destination)
		}
		from, to := e.Source, e.Destination
		if e.EdgeType == graph.EdgeBackwardsDirected {
			from, to = to, from
		}
		if e.EdgeType.IsDirected() && check.WouldCreateCycle(g, from, to) {
			return errs.New(errs.ErrCodeInvalidGraph, "edge %q -> %q would create a cycle", from, to)
		}
		return g.AddEdge(e.Source, e.Destination, convert.EdgeAttributes(e))
	})
}

// RemoveEdge removes the edge stored as source → target.
func (s *Session) RemoveEdge(ctx context.Context, source, target string) error {
	return s.mutate(ctx, func(g *simgraph.Graph) error {
		if err := g.DropEdge(source, target); err != nil {
			return errs.Wrap(errs.ErrCodeNotFound, err, "remove edge %q -> %q", source, target)
		}
		return nil
	})
}

// ReverseEdge replaces source → target with target → source, keeping the
// edge's attributes, unless the reversed edge would close a cycle.
func (s *Session) ReverseEdge(ctx context.Context, source, target string) error {
	return s.mutate(ctx, func(g *simgraph.Graph) error {
		attrs, ok := g.EdgeAttributes(source, target)
		if !ok {
			return errs.New(errs.ErrCodeNotFound, "edge %q -> %q not found", source, target)
		}
		if check.WouldCreateCycle(g, target, source) {
			return errs.New(errs.ErrCodeInvalidGraph, "reversing %q -> %q would create a cycle", source, target)
		}
		attrs = attrs.Clone()
		attrs[simgraph.AttrSource], attrs[simgraph.AttrDestination] = target, source
		_ = g.DropEdge(source, target)
		_ = g.DropEdge(target, source)
		return g.AddEdge(target, source, attrs)
	})
}

// Layout runs p on a snapshot of the graph and applies the result.
func (s *Session) Layout(ctx context.Context, p layout.Params) (layout.Update, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return layout.Update{}, errs.New(errs.ErrCodeClosed, "editor session is closed")
	}
	snap := s.g.Export()
	s.mu.Unlock()

	u, err := s.engine.Compute(ctx, p, snap)
	if err != nil {
		return layout.Update{}, err
	}
	s.mu.Lock()
	s.render.EdgePoints = layout.EdgePoints{}
	s.mu.Unlock()
	s.Apply(u)
	return u, nil
}

// Apply writes an update to the render state and the graph's positions.
// Unknown nodes are ignored. Position changes are not structural, so Apply
// never schedules OnChange.
func (s *Session) Apply(u layout.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	maps.Copy(s.render.Layout, u.Layout)
	maps.Copy(s.render.EdgePoints, u.EdgePoints)
	layout.Store(s.g, u.Layout)
}

// RenderState returns a copy of the current positions and edge points.
func (s *Session) RenderState() layout.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layout.Update{
		Layout:     maps.Clone(s.render.Layout),
		EdgePoints: maps.Clone(s.render.EdgePoints),
	}
}

// Graph returns the current declarative form of the session graph.
func (s *Session) Graph() graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return convert.Serialize(s.g)
}

// WouldCreateCycle reports whether adding source → target would close a
// cycle.
func (s *Session) WouldCreateCycle(source, target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return check.WouldCreateCycle(s.g, source, target)
}

// IsDAG reports whether the session graph is acyclic.
func (s *Session) IsDAG() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return check.IsDAG(s.g)
}

// Close stops the engine and pending notifications. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.unsubscribe()
	s.mu.Unlock()
	s.engine.Close()
}
