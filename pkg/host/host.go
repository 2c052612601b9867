package host

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/layout/strategy"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Callback names in the worker's table.
const (
	OnAddNode   = "onAddNode"
	OnAddEdge   = "onAddEdge"
	OnStartDrag = "onStartDrag"
	OnMove      = "onMove"
	OnEndDrag   = "onEndDrag"
	OnCleanup   = "onCleanup"
)

// MoveArgs are the arguments of onMove.
type MoveArgs struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// NodeArgs are the arguments of onEndDrag.
type NodeArgs struct {
	ID string `json:"id"`
}

// Resolver turns JSON parameters into a strategy.
type Resolver func(params []byte, logger *log.Logger) (layout.Layout, layout.Params, error)

type kind int

const (
	kindCompute kind = iota
	kindInvoke
)

type request struct {
	id      string
	kind    kind
	ctx     context.Context
	params  json.RawMessage
	payload json.RawMessage
	name    string
	reply   chan response
}

type response struct {
	update layout.Update
	err    error
}

// Host dispatches layout work to its worker goroutine.
type Host struct {
	log     *log.Logger
	resolve Resolver
	ticks   *Coalescer

	reqs chan request
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithResolver replaces strategy lookup.
func WithResolver(r Resolver) Option {
	return func(h *Host) {
		if r != nil {
			h.resolve = r
		}
	}
}

// New starts a host. Streamed updates are delivered to apply, one at a time.
func New(apply func(layout.Update), opts ...Option) *Host {
	h := &Host{
		log:     log.Default(),
		resolve: strategy.Decode,
		reqs:    make(chan request),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.ticks = NewCoalescer(apply)
	w := &worker{host: h, callbacks: map[string]callback{}}
	go w.run()
	return h
}

// Compute encodes p and s and runs them on the worker.
func (h *Host) Compute(ctx context.Context, p layout.Params, s simgraph.Snapshot) (layout.Update, error) {
	params, err := layout.Encode(p)
	if err != nil {
		return layout.Update{}, err
	}
	snap, err := simgraph.MarshalSnapshot(s)
	if err != nil {
		return layout.Update{}, errs.Wrap(errs.ErrCodeInvalidGraph, err, "encode snapshot")
	}
	return h.ComputeJSON(ctx, params, snap)
}

// ComputeJSON runs a computation from its wire form.
func (h *Host) ComputeJSON(ctx context.Context, params, snapshot []byte) (layout.Update, error) {
	r := h.send(ctx, request{kind: kindCompute, params: params, payload: snapshot})
	return r.update, r.err
}

// Invoke calls the named callback with args encoded as JSON. A nil args
// sends no payload.
func (h *Host) Invoke(ctx context.Context, name string, args any) error {
	var payload json.RawMessage
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "encode %s arguments", name)
		}
		payload = data
	}
	return h.InvokeJSON(ctx, name, payload)
}

// InvokeJSON calls the named callback with raw JSON arguments.
func (h *Host) InvokeJSON(ctx context.Context, name string, args json.RawMessage) error {
	return h.send(ctx, request{kind: kindInvoke, name: name, payload: args}).err
}

// StartDrag invokes onStartDrag.
func (h *Host) StartDrag(ctx context.Context) error { return h.Invoke(ctx, OnStartDrag, nil) }

// Move invokes onMove.
func (h *Host) Move(ctx context.Context, id string, p layout.Point) error {
	return h.Invoke(ctx, OnMove, MoveArgs{ID: id, X: p.X, Y: p.Y})
}

// EndDrag invokes onEndDrag.
func (h *Host) EndDrag(ctx context.Context, id string) error {
	return h.Invoke(ctx, OnEndDrag, NodeArgs{ID: id})
}

// AddNode invokes onAddNode with the full current graph.
func (h *Host) AddNode(ctx context.Context, s simgraph.Snapshot) error {
	return h.Invoke(ctx, OnAddNode, s)
}

// AddEdge invokes onAddEdge with the full current graph.
func (h *Host) AddEdge(ctx context.Context, s simgraph.Snapshot) error {
	return h.Invoke(ctx, OnAddEdge, s)
}

// Cleanup invokes onCleanup.
func (h *Host) Cleanup(ctx context.Context) error { return h.Invoke(ctx, OnCleanup, nil) }

func (h *Host) send(ctx context.Context, req request) response {
	req.id = uuid.NewString()
	req.ctx = ctx
	req.reply = make(chan response, 1)

	select {
	case h.reqs <- req:
	case <-h.quit:
		return response{err: errs.New(errs.ErrCodeClosed, "layout host is closed")}
	case <-ctx.Done():
		return response{err: ctx.Err()}
	}
	select {
	case r := <-req.reply:
		return r
	case <-ctx.Done():
		return response{err: ctx.Err()}
	}
}

// Close runs the current onCleanup, stops the worker and flushes pending
// updates. It is idempotent.
func (h *Host) Close() {
	h.once.Do(func() { close(h.quit) })
	<-h.done
	h.ticks.Close()
}
