package force

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	initialRadius = 10.0
	// initialAngle is the golden angle used for phyllotaxis placement.
	initialAngle = 2.399963229728653 // math.Pi * (3 - math.Sqrt(5))
)

// Node is a simulated particle.
type Node struct {
	ID     string
	Index  int
	X, Y   float64
	VX, VY float64
	// FX and FY pin the node when non-nil.
	FX, FY *float64
	// Radius is used by Collide.
	Radius float64
	// Group and Category are opaque labels read by per-node accessors.
	Group    string
	Category string
}

// Pinned reports whether the node is fixed in place.
func (n *Node) Pinned() bool { return n.FX != nil || n.FY != nil }

// Force adjusts node velocities once per tick.
type Force interface {
	// Initialize is called when the force is added and whenever the node
	// set changes.
	Initialize(nodes []*Node, rnd *rand.Rand)
	// Apply runs the force at the given alpha.
	Apply(alpha float64)
}

// Simulation is a force simulation.
type Simulation struct {
	mu            sync.Mutex
	nodes         []*Node
	byID          map[string]*Node
	forces        []namedForce
	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	rnd           *rand.Rand

	cancel context.CancelFunc
	done   chan struct{}
}

type namedForce struct {
	name  string
	force Force
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed seeds the simulation's jiggle source.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.rnd = rand.New(rand.NewPCG(seed, seed^0xdeadbeef)) }
}

// WithVelocityDecay sets the fraction of velocity lost per tick.
func WithVelocityDecay(d float64) Option {
	return func(s *Simulation) { s.velocityDecay = 1 - d }
}

// WithAlphaDecay sets the per-tick alpha cooling rate.
func WithAlphaDecay(d float64) Option {
	return func(s *Simulation) { s.alphaDecay = d }
}

// New creates a simulation over nodes. Nodes with NaN coordinates are
// placed on a phyllotaxis spiral around the origin.
func New(nodes []*Node, opts ...Option) *Simulation {
	s := &Simulation{
		alpha:         1,
		alphaMin:      0.001,
		alphaDecay:    1 - math.Pow(0.001, 1.0/300),
		velocityDecay: 0.6,
	}
	WithSeed(1)(s)
	for _, opt := range opts {
		opt(s)
	}
	s.setNodes(nodes)
	return s
}

func (s *Simulation) setNodes(nodes []*Node) {
	s.nodes = nodes
	s.byID = make(map[string]*Node, len(nodes))
	for i, n := range nodes {
		n.Index = i
		s.byID[n.ID] = n
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X, n.Y = r*math.Cos(a), r*math.Sin(a)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
	for _, f := range s.forces {
		f.force.Initialize(s.nodes, s.rnd)
	}
}

// SetNodes replaces the node set and re-initialises every force.
func (s *Simulation) SetNodes(nodes []*Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setNodes(nodes)
}

// Nodes returns the simulated nodes. Callers must not modify them while the
// simulation runs; use Positions for a safe copy.
func (s *Simulation) Nodes() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes
}

// Node returns the node with the given id.
func (s *Simulation) Node(id string) (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	return n, ok
}

// AddForce registers f under name, replacing any force with that name.
func (s *Simulation) AddForce(name string, f Force) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Initialize(s.nodes, s.rnd)
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name, f})
}

// RemoveForce unregisters the named force.
func (s *Simulation) RemoveForce(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return
		}
	}
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// SetAlpha sets the current alpha.
func (s *Simulation) SetAlpha(a float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alpha = a
}

// AlphaTarget returns the value alpha cools toward.
func (s *Simulation) AlphaTarget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alphaTarget
}

// SetAlphaTarget sets the value alpha cools toward.
func (s *Simulation) SetAlphaTarget(a float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alphaTarget = a
}

// Pin fixes node id at (x, y). Returns false for unknown ids.
func (s *Simulation) Pin(id string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return false
	}
	n.FX, n.FY = &x, &y
	return true
}

// Unpin releases node id.
func (s *Simulation) Unpin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.byID[id]; ok {
		n.FX, n.FY = nil, nil
	}
}

// Pinned returns the ids of pinned nodes in node order.
func (s *Simulation) Pinned() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, n := range s.nodes {
		if n.Pinned() {
			out = append(out, n.ID)
		}
	}
	return out
}

// Tick advances the simulation n times.
func (s *Simulation) Tick(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		s.step()
	}
}

func (s *Simulation) step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	for _, f := range s.forces {
		f.force.Apply(s.alpha)
	}
	for _, n := range s.nodes {
		if n.FX != nil {
			n.X, n.VX = *n.FX, 0
		} else {
			n.VX *= s.velocityDecay
			n.X += n.VX
		}
		if n.FY != nil {
			n.Y, n.VY = *n.FY, 0
		} else {
			n.VY *= s.velocityDecay
			n.Y += n.VY
		}
	}
}

// Positions returns a copy of every node position.
func (s *Simulation) Positions() map[string][2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions()
}

func (s *Simulation) positions() map[string][2]float64 {
	out := make(map[string][2]float64, len(s.nodes))
	for _, n := range s.nodes {
		out[n.ID] = [2]float64{n.X, n.Y}
	}
	return out
}

// =============================================================================
// Background ticking
// =============================================================================

// Start ticks the simulation every interval on a new goroutine, calling
// onTick with a copy of the positions after each tick. The goroutine exits
// when alpha drops below its minimum, when ctx is cancelled, or on Stop.
// Calling Start while running is a no-op.
func (s *Simulation) Start(ctx context.Context, interval time.Duration, onTick func(map[string][2]float64)) {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			if s.done == done {
				s.cancel, s.done = nil, nil
			}
			s.mu.Unlock()
			cancel()
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			s.mu.Lock()
			s.step()
			pos := s.positions()
			cooled := s.alpha < s.alphaMin
			s.mu.Unlock()
			if onTick != nil {
				onTick(pos)
			}
			if cooled {
				return
			}
		}
	}()
}

// Running reports whether a Start goroutine is active.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// Stop halts a Start goroutine and waits for it to exit.
func (s *Simulation) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
