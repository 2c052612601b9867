// Package strategy maps layout parameters to the strategy that runs them.
package strategy

import (
	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/layout/circular"
	"github.com/matzehuels/graphlayout/pkg/layout/custom"
	"github.com/matzehuels/graphlayout/pkg/layout/fcose"
	"github.com/matzehuels/graphlayout/pkg/layout/forceatlas2"
	"github.com/matzehuels/graphlayout/pkg/layout/marketing"
	"github.com/matzehuels/graphlayout/pkg/layout/planar"
	"github.com/matzehuels/graphlayout/pkg/layout/spring"
)

// For returns the strategy configured by p. Unknown parameter types are an
// UNKNOWN_LAYOUT error. logger may be nil.
func For(p layout.Params, logger *log.Logger) (layout.Layout, error) {
	switch v := p.(type) {
	case layout.CircularParams:
		return circular.New(v), nil
	case layout.CustomParams:
		return custom.New(v), nil
	case layout.ForceAtlas2Params:
		return forceatlas2.New(v), nil
	case layout.FcoseParams:
		return fcose.New(v), nil
	case layout.PlanarParams:
		return planar.New(v), nil
	case layout.MarketingParams:
		return marketing.New(v), nil
	case layout.SpringParams:
		s := spring.New(v)
		if logger != nil {
			s.Logger = logger
		}
		return s, nil
	}
	return nil, errs.New(errs.ErrCodeUnknownLayout, "no strategy for %T", p)
}

// Decode parses JSON parameters and returns the matching strategy.
func Decode(data []byte, logger *log.Logger) (layout.Layout, layout.Params, error) {
	p, err := layout.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	l, err := For(p, logger)
	return l, p, err
}
