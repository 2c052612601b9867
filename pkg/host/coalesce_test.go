package host

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/graphlayout/pkg/layout"
)

func TestCoalescerLastWriteWins(t *testing.T) {
	release := make(chan struct{})
	var (
		mu      sync.Mutex
		applied []layout.Update
	)
	first := true
	c := NewCoalescer(func(u layout.Update) {
		if first {
			first = false
			<-release
		}
		mu.Lock()
		defer mu.Unlock()
		applied = append(applied, u)
	})

	c.Push(layout.Update{Layout: layout.Positions{"a": {X: 0}}})
	// Wait until the first apply is in flight.
	for {
		c.mu.Lock()
		idle := c.merged == 0
		c.mu.Unlock()
		if idle {
			break
		}
	}
	for i := 1; i <= 10; i++ {
		c.Push(layout.Update{Layout: layout.Positions{"a": {X: float64(i)}}})
	}
	c.Push(layout.Update{Layout: layout.Positions{"b": {X: 99}}, EdgePoints: layout.EdgePoints{"a||b": {{X: 1}}}})
	close(release)
	c.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(applied) != 2 {
		t.Fatalf("applied %d updates, want 2 (first + one merged)", len(applied))
	}
	last := applied[1]
	if last.Layout["a"].X != 10 || last.Layout["b"].X != 99 {
		t.Errorf("merged update = %+v, want a=10 b=99", last.Layout)
	}
	if len(last.EdgePoints["a||b"]) != 1 {
		t.Errorf("edge points lost: %+v", last.EdgePoints)
	}
}

func TestCoalescerSingleApplier(t *testing.T) {
	var inFlight, peak atomic.Int32
	c := NewCoalescer(func(layout.Update) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
	})
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				c.Push(layout.Update{Layout: layout.Positions{"n": {X: float64(g*1000 + i)}}})
			}
		}()
	}
	wg.Wait()
	c.Close()
	if peak.Load() != 1 {
		t.Errorf("peak concurrent applies = %d, want 1", peak.Load())
	}
}

func TestCoalescerDropsAfterClose(t *testing.T) {
	var calls atomic.Int32
	c := NewCoalescer(func(layout.Update) { calls.Add(1) })
	c.Close()
	c.Push(layout.Update{Layout: layout.Positions{"a": {}}})
	c.Close()
	if calls.Load() != 0 {
		t.Errorf("apply called %d times after Close", calls.Load())
	}
}
