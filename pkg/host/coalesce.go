package host

import (
	"context"
	"maps"
	"sync"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/observability"
)

// Coalescer applies updates on one goroutine. Updates pushed while an apply
// is in flight are merged into a single pending update, the latest position
// of each node and the latest points of each edge winning.
type Coalescer struct {
	apply func(layout.Update)

	mu      sync.Mutex
	pending layout.Update
	merged  int
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewCoalescer starts a coalescer delivering to apply. A nil apply discards
// updates.
func NewCoalescer(apply func(layout.Update)) *Coalescer {
	if apply == nil {
		apply = func(layout.Update) {}
	}
	c := &Coalescer{
		apply: apply,
		wake:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go c.run()
	return c
}

// Push queues u. It never blocks on apply. Pushes after Close are dropped.
func (c *Coalescer) Push(u layout.Update) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if len(u.Layout) > 0 {
		if c.pending.Layout == nil {
			c.pending.Layout = make(layout.Positions, len(u.Layout))
		}
		maps.Copy(c.pending.Layout, u.Layout)
	}
	if len(u.EdgePoints) > 0 {
		if c.pending.EdgePoints == nil {
			c.pending.EdgePoints = make(layout.EdgePoints, len(u.EdgePoints))
		}
		maps.Copy(c.pending.EdgePoints, u.EdgePoints)
	}
	c.merged++
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coalescer) take() (layout.Update, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.merged == 0 {
		return layout.Update{}, 0, false
	}
	u, n := c.pending, c.merged
	c.pending, c.merged = layout.Update{}, 0
	return u, n, true
}

func (c *Coalescer) run() {
	defer close(c.done)
	for {
		select {
		case <-c.wake:
			c.deliver()
		case <-c.quit:
			c.deliver()
			return
		}
	}
}

func (c *Coalescer) deliver() {
	u, n, ok := c.take()
	if !ok {
		return
	}
	c.apply(u)
	observability.Host().OnTickApplied(context.Background(), len(u.Layout), n)
}

// Close delivers any pending update, stops the applier and waits for it.
func (c *Coalescer) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.quit)
	})
	<-c.done
}
