package layout

import (
	"context"
	"math"

	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Point is a 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Positions maps node keys to positions.
type Positions map[string]Point

// EdgePoints maps "source||target" edge keys to bend-point polylines.
type EdgePoints map[string][]Point

// EdgeKey returns the EdgePoints key of source → target.
func EdgeKey(source, target string) string {
	return simgraph.EdgeKey{Source: source, Target: target}.String()
}

// Update is an incremental position update streamed while a strategy runs.
type Update struct {
	Layout     Positions  `json:"layout"`
	EdgePoints EdgePoints `json:"edgePoints,omitempty"`
}

// TickFunc receives incremental updates. It may be nil.
type TickFunc func(Update)

// Hooks are the lifecycle callbacks a strategy may expose. Nil fields are
// unsupported by the strategy.
type Hooks struct {
	// OnAddNode is called after nodes were added to the caller's graph. The
	// snapshot is the full current graph.
	OnAddNode func(ctx context.Context, s simgraph.Snapshot) error
	// OnAddEdge is called after edges were added to the caller's graph.
	OnAddEdge func(ctx context.Context, s simgraph.Snapshot) error
	// OnStartDrag heats the simulation for an interactive drag.
	OnStartDrag func()
	// OnMove pins node id at p. At most one node is pinned at a time.
	OnMove func(id string, p Point)
	// OnEndDrag releases node id.
	OnEndDrag func(id string)
	// OnCleanup stops any background work.
	OnCleanup func()
}

// Result is the outcome of Apply.
type Result struct {
	Layout     Positions  `json:"layout"`
	EdgePoints EdgePoints `json:"edgePoints,omitempty"`
	Hooks      Hooks      `json:"-"`
}

// Update returns the result's positions and edge points as an Update.
func (r *Result) Update() Update {
	return Update{Layout: r.Layout, EdgePoints: r.EdgePoints}
}

// Layout is a layout strategy.
//
// Apply must return an empty Positions map, not an error, for a graph with
// no nodes. Implementations must not retain g after Apply returns; running
// strategies copy what they need.
type Layout interface {
	Apply(ctx context.Context, g *simgraph.Graph, tick TickFunc) (*Result, error)
}

// Func adapts a function to the Layout interface.
type Func func(ctx context.Context, g *simgraph.Graph, tick TickFunc) (*Result, error)

// Apply calls f.
func (f Func) Apply(ctx context.Context, g *simgraph.Graph, tick TickFunc) (*Result, error) {
	return f(ctx, g, tick)
}

// Existing returns the positions already stored on g's nodes. Nodes without
// a complete x/y pair are omitted.
func Existing(g *simgraph.Graph) Positions {
	out := make(Positions)
	for _, id := range g.Nodes() {
		attrs, _ := g.NodeAttributes(id)
		if x, y, ok := attrs.Position(); ok {
			out[id] = Point{x, y}
		}
	}
	return out
}

// Store writes positions onto g's nodes. Unknown keys are ignored.
func Store(g *simgraph.Graph, pos Positions) {
	for _, id := range g.Nodes() {
		if p, ok := pos[id]; ok {
			_ = g.SetPosition(id, p.X, p.Y)
		}
	}
}

// Oriented maps a position computed for vertical orientation (tiers stacked
// along y) into o.
func Oriented(p Point, o Orientation) Point {
	if o == Horizontal {
		return Point{X: p.Y, Y: p.X}
	}
	return p
}

// Bounds returns the bounding box of pos. Both points are zero when pos is
// empty.
func Bounds(pos Positions) (min, max Point) {
	first := true
	for _, p := range pos {
		if first {
			min, max = p, p
			first = false
			continue
		}
		min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
		max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
	}
	return min, max
}
