package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/layout/strategy"
	"github.com/matzehuels/graphlayout/pkg/observability"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// GenerateLayout runs the strategy configured by p on g to completion and
// stores the resulting positions on g. Background work started by the
// strategy is cleaned up before returning.
func GenerateLayout(ctx context.Context, g *simgraph.Graph, p layout.Params, logger *log.Logger) (layout.Update, error) {
	l, err := strategy.For(p, logger)
	if err != nil {
		return layout.Update{}, err
	}

	name := string(p.LayoutName())
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, name, g.Order())
	start := time.Now()

	res, err := l.Apply(ctx, g, nil)
	hooks.OnLayoutComplete(ctx, name, time.Since(start), err)
	if err != nil {
		return layout.Update{}, err
	}
	if res.Hooks.OnCleanup != nil {
		res.Hooks.OnCleanup()
	}

	layout.Store(g, res.Layout)
	return res.Update(), nil
}
