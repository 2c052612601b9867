package spring

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/layout/force"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

const (
	dragAlphaTarget = 0.3
	tierPull        = 0.5
)

// Layout is the spring strategy.
type Layout struct {
	params layout.SpringParams
	Logger *log.Logger
}

// New returns a spring layout logging to the default logger.
func New(p layout.SpringParams) *Layout {
	return &Layout{params: p, Logger: log.Default()}
}

// Apply starts a session over g and returns its initial positions and hooks.
func (l *Layout) Apply(ctx context.Context, g *simgraph.Graph, tick layout.TickFunc) (*layout.Result, error) {
	s, err := l.Start(ctx, g, tick)
	if err != nil {
		return nil, err
	}
	return &layout.Result{Layout: s.Positions(), Hooks: s.Hooks()}, nil
}

// Start builds a session over g and starts ticking. The session outlives
// ctx's cancellation; stop it with Stop.
func (l *Layout) Start(ctx context.Context, g *simgraph.Graph, tick layout.TickFunc) (*Session, error) {
	s := &Session{
		params: l.params,
		log:    l.Logger,
		ctx:    context.WithoutCancel(ctx),
		tick:   tick,
	}
	sim, err := s.build(g, force.FromGraph(g, l.params.NodeSize))
	if err != nil {
		return nil, err
	}
	s.sim = sim
	s.start()
	return s, nil
}

// Session is one running spring simulation.
type Session struct {
	params layout.SpringParams
	log    *log.Logger
	ctx    context.Context
	tick   layout.TickFunc

	mu       sync.Mutex
	sim      *force.Simulation
	pinned   string
	pending  *simgraph.Snapshot
	debounce *time.Timer
	closed   bool
}

// build creates a simulation over nodes with g's edges and the configured
// forces.
func (s *Session) build(g *simgraph.Graph, nodes []*force.Node) (*force.Simulation, error) {
	p := s.params
	levels, err := force.TierLevels(g, p.Tiers, p.TierSeparation)
	if err != nil {
		return nil, err
	}
	force.SetGroups(nodes, g, p.Group)

	edges := force.EdgesFrom(g)
	direct := len(edges)
	if p.Group != "" {
		edges = append(edges, force.GroupEdges(nodes, force.GroupOf)...)
	}

	sim := force.New(nodes, force.WithVelocityDecay(p.VelocityDecay))
	sim.AddForce("link", &force.Link{
		Edges: edges,
		Distance: func(i int, _ force.Edge) float64 {
			if i >= direct {
				return p.GroupLinkDistance
			}
			return p.LinkDistance
		},
	})
	sim.AddForce("charge", force.NewManyBody(force.Constant(p.ChargeStrength)))
	sim.AddForce("collide", &force.Collide{Radius: force.Constant(p.NodeSize + p.CollidePadding)})
	sim.AddForce("center", &force.Center{})
	if p.Group != "" {
		sim.AddForce("cluster", &force.ClusterRepel{
			Group:    force.GroupOf,
			Distance: p.ClusterDistance,
			Strength: p.ClusterStrength,
		})
	}
	if levels != nil {
		sim.AddForce("tiers", force.TierForce(levels, p.Orientation, tierPull))
	}
	return sim, nil
}

func (s *Session) interval() time.Duration {
	return time.Duration(max(s.params.TickIntervalMillis, 1)) * time.Millisecond
}

// start resumes ticking; it is a no-op while already running.
func (s *Session) start() {
	s.sim.Start(s.ctx, s.interval(), s.emit)
}

func (s *Session) emit(pos map[string][2]float64) {
	if s.tick == nil {
		return
	}
	u := layout.Update{Layout: make(layout.Positions, len(pos))}
	for id, xy := range pos {
		u.Layout[id] = layout.Point{X: xy[0], Y: xy[1]}
	}
	s.tick(u)
}

// Positions returns the current node positions.
func (s *Session) Positions() layout.Positions {
	s.mu.Lock()
	sim := s.sim
	s.mu.Unlock()
	out := make(layout.Positions)
	for id, xy := range sim.Positions() {
		out[id] = layout.Point{X: xy[0], Y: xy[1]}
	}
	return out
}

// Running reports whether the simulation is ticking.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Running()
}

// Pinned returns the pinned node, or "".
func (s *Session) Pinned() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinned
}

// Simulation exposes the underlying simulation.
func (s *Session) Simulation() *force.Simulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim
}

// Hooks returns the session's lifecycle callbacks.
func (s *Session) Hooks() layout.Hooks {
	return layout.Hooks{
		OnStartDrag: s.StartDrag,
		OnMove:      s.Move,
		OnEndDrag:   s.EndDrag,
		OnAddNode:   s.Reimport,
		OnAddEdge:   s.Reimport,
		OnCleanup:   s.Stop,
	}
}

// StartDrag heats the simulation and restarts ticking.
func (s *Session) StartDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sim.SetAlphaTarget(dragAlphaTarget)
	s.sim.SetAlpha(max(s.sim.Alpha(), dragAlphaTarget))
	s.start()
}

// Move pins id at p, releasing any other pinned node.
func (s *Session) Move(id string, p layout.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.pinned != "" && s.pinned != id {
		s.sim.Unpin(s.pinned)
	}
	if s.sim.Pin(id, p.X, p.Y) {
		s.pinned = id
	} else {
		s.pinned = ""
	}
}

// EndDrag releases id and lets the simulation cool.
func (s *Session) EndDrag(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sim.Unpin(id)
	if s.pinned == id {
		s.pinned = ""
	}
	s.sim.SetAlphaTarget(0)
}

// Reimport schedules a rebuild from snap once DebounceMillis pass without
// another call. Only the latest snapshot is used.
func (s *Session) Reimport(_ context.Context, snap simgraph.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.pending = &snap
	d := time.Duration(s.params.DebounceMillis) * time.Millisecond
	if s.debounce == nil {
		s.debounce = time.AfterFunc(d, s.flush)
	} else {
		s.debounce.Reset(d)
	}
	return nil
}

func (s *Session) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.pending
	s.pending = nil
	if s.closed || snap == nil {
		return
	}

	g, err := simgraph.FromSnapshot(*snap)
	if err != nil {
		s.log.Warn("spring re-import failed", "err", err)
		return
	}

	s.sim.Stop()
	old := make(map[string]*force.Node)
	for _, n := range s.sim.Nodes() {
		old[n.ID] = n
	}
	nodes := force.FromGraph(g, s.params.NodeSize)
	for i, n := range nodes {
		if prev, ok := old[n.ID]; ok {
			prev.Category = n.Category
			nodes[i] = prev
		}
	}
	sim, err := s.build(g, nodes)
	if err != nil {
		s.log.Warn("spring re-import failed", "err", err)
		s.start()
		return
	}
	if s.pinned != "" && !hasNode(nodes, s.pinned) {
		s.pinned = ""
	}
	sim.SetAlphaTarget(s.sim.AlphaTarget())
	s.sim = sim
	s.log.Debug("spring re-imported graph", "nodes", len(nodes))
	s.start()
}

func hasNode(nodes []*force.Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Stop halts ticking and cancels pending re-imports. It is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.pending = nil
	s.sim.Stop()
}
