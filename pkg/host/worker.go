package host

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"time"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/observability"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

type callback func(ctx context.Context, args json.RawMessage) error

// worker owns the callback table; only its goroutine touches it.
type worker struct {
	host      *Host
	callbacks map[string]callback
}

func (w *worker) run() {
	defer close(w.host.done)
	for {
		select {
		case req := <-w.host.reqs:
			w.handle(req)
		case <-w.host.quit:
			w.cleanup(context.Background(), "close")
			return
		}
	}
}

func (w *worker) handle(req request) {
	var r response
	switch req.kind {
	case kindCompute:
		r.update, r.err = w.compute(req)
	case kindInvoke:
		r.err = w.invoke(req)
	}
	req.reply <- r
}

func (w *worker) compute(req request) (layout.Update, error) {
	logger := w.host.log.With("request", req.id)

	strat, params, err := w.host.resolve(req.params, logger)
	if err != nil {
		return layout.Update{}, err
	}
	snap, err := simgraph.UnmarshalSnapshot(req.payload)
	if err != nil {
		return layout.Update{}, errs.Wrap(errs.ErrCodeInvalidGraph, err, "decode graph snapshot")
	}
	g, err := simgraph.FromSnapshot(snap)
	if err != nil {
		return layout.Update{}, errs.Wrap(errs.ErrCodeInvalidGraph, err, "build graph from snapshot")
	}

	w.cleanup(req.ctx, req.id)

	name := string(params.LayoutName())
	start := time.Now()
	observability.Layout().OnLayoutStart(req.ctx, name, g.Order())
	res, err := strat.Apply(req.ctx, g, w.host.ticks.Push)
	observability.Layout().OnLayoutComplete(req.ctx, name, time.Since(start), err)
	if err != nil {
		logger.Warn("layout failed", "layout", name, "err", err)
		return layout.Update{}, err
	}

	w.register(res.Hooks)
	logger.Debug("layout computed",
		"layout", name,
		"nodes", g.Order(),
		"edges", g.Size(),
		"callbacks", slices.Sorted(maps.Keys(w.callbacks)),
		"duration", time.Since(start))
	return res.Update(), nil
}

// cleanup runs the registered onCleanup, if any, and empties the table.
func (w *worker) cleanup(ctx context.Context, id string) {
	if cb, ok := w.callbacks[OnCleanup]; ok {
		w.host.log.Debug("cleaning up previous layout", "request", id)
		if err := cb(ctx, nil); err != nil {
			w.host.log.Warn("cleanup failed", "request", id, "err", err)
		}
	}
	clear(w.callbacks)
}

func (w *worker) register(h layout.Hooks) {
	clear(w.callbacks)
	if h.OnAddNode != nil {
		w.callbacks[OnAddNode] = snapshotCallback(h.OnAddNode)
	}
	if h.OnAddEdge != nil {
		w.callbacks[OnAddEdge] = snapshotCallback(h.OnAddEdge)
	}
	if fn := h.OnStartDrag; fn != nil {
		w.callbacks[OnStartDrag] = func(context.Context, json.RawMessage) error {
			fn()
			return nil
		}
	}
	if fn := h.OnMove; fn != nil {
		w.callbacks[OnMove] = func(_ context.Context, args json.RawMessage) error {
			var a MoveArgs
			if err := decodeArgs(OnMove, args, &a); err != nil {
				return err
			}
			fn(a.ID, layout.Point{X: a.X, Y: a.Y})
			return nil
		}
	}
	if fn := h.OnEndDrag; fn != nil {
		w.callbacks[OnEndDrag] = func(_ context.Context, args json.RawMessage) error {
			var a NodeArgs
			if err := decodeArgs(OnEndDrag, args, &a); err != nil {
				return err
			}
			fn(a.ID)
			return nil
		}
	}
	if fn := h.OnCleanup; fn != nil {
		w.callbacks[OnCleanup] = func(context.Context, json.RawMessage) error {
			fn()
			return nil
		}
	}
}

func snapshotCallback(fn func(context.Context, simgraph.Snapshot) error) callback {
	return func(ctx context.Context, args json.RawMessage) error {
		s, err := simgraph.UnmarshalSnapshot(args)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidGraph, err, "decode graph snapshot")
		}
		return fn(ctx, s)
	}
}

func decodeArgs(name string, args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode %s arguments", name)
	}
	return nil
}

func (w *worker) invoke(req request) error {
	cb, ok := w.callbacks[req.name]
	observability.Host().OnInvoke(req.ctx, req.name, ok)
	if !ok {
		w.host.log.Warn("callback not registered", "request", req.id, "name", req.name)
		return nil
	}
	if err := cb(req.ctx, req.payload); err != nil {
		return err
	}
	if req.name == OnCleanup {
		clear(w.callbacks)
	}
	return nil
}
