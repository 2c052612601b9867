package simgraph

import (
	"maps"
	"slices"
)

// EventType classifies a graph mutation.
type EventType int

const (
	NodeAdded EventType = iota
	NodeDropped
	NodeUpdated
	EdgeAdded
	EdgeDropped
	EdgeUpdated
	PositionUpdated
	Cleared
)

var eventNames = [...]string{
	NodeAdded:       "nodeAdded",
	NodeDropped:     "nodeDropped",
	NodeUpdated:     "nodeAttributesUpdated",
	EdgeAdded:       "edgeAdded",
	EdgeDropped:     "edgeDropped",
	EdgeUpdated:     "edgeAttributesUpdated",
	PositionUpdated: "positionUpdated",
	Cleared:         "cleared",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Structural reports whether the event changes the node or edge set.
func (t EventType) Structural() bool {
	switch t {
	case NodeAdded, NodeDropped, EdgeAdded, EdgeDropped, Cleared:
		return true
	}
	return false
}

// Event describes one mutation. Node is set for node events, Source and
// Target for edge events.
type Event struct {
	Type   EventType
	Node   string
	Source string
	Target string
}

// OnMutated registers fn to be called after every mutation and returns a
// function that unregisters it. Listeners are called in registration order.
func (g *Graph) OnMutated(fn func(Event)) (unsubscribe func()) {
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	return func() { delete(g.listeners, id) }
}

func (g *Graph) emit(e Event) {
	if g.silent > 0 || len(g.listeners) == 0 {
		return
	}
	for _, id := range slices.Sorted(maps.Keys(g.listeners)) {
		g.listeners[id](e)
	}
}
