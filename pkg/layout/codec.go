package layout

import (
	"bytes"
	"encoding/json"
	"fmt"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
)

// New returns the default parameters of the named strategy.
func New(name Name) (Params, error) {
	switch name {
	case NameCircular:
		return NewCircularParams(), nil
	case NameCustom:
		return NewCustomParams(), nil
	case NameForceAtlas2:
		return NewForceAtlas2Params(), nil
	case NameFcose:
		return NewFcoseParams(), nil
	case NamePlanar:
		return NewPlanarParams(), nil
	case NameMarketing:
		return NewMarketingParams(), nil
	case NameSpring:
		return NewSpringParams(), nil
	}
	return nil, errs.New(errs.ErrCodeUnknownLayout, "unknown layout %q", name)
}

type discriminator struct {
	LayoutName Name `json:"layoutName"`
	LayoutType Name `json:"layout_type"`
}

// Decode parses JSON parameters. The strategy is taken from layoutName, or
// layout_type when layoutName is absent. Missing fields keep their defaults.
//
// Returns UNKNOWN_LAYOUT for an unrecognised name and INVALID_PARAMS for
// malformed JSON, a missing name or values rejected by Validate.
func Decode(data []byte) (Params, error) {
	var d discriminator
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidParams, err, "decode layout params")
	}
	name := d.LayoutName
	if name == "" {
		name = d.LayoutType
	}
	if name == "" {
		return nil, errs.New(errs.ErrCodeInvalidParams, "layout params must name a layout (layoutName)")
	}
	p, err := New(name)
	if err != nil {
		return nil, err
	}
	if p, err = decodeInto(p, data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidParams, err, "decode %s params", name)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeInto(p Params, data []byte) (Params, error) {
	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(data))
		return d.Decode(v)
	}
	switch v := p.(type) {
	case CircularParams:
		err := dec(&v)
		return v, err
	case CustomParams:
		err := dec(&v)
		return v, err
	case ForceAtlas2Params:
		err := dec(&v)
		return v, err
	case FcoseParams:
		err := dec(&v)
		return v, err
	case PlanarParams:
		err := dec(&v)
		return v, err
	case MarketingParams:
		err := dec(&v)
		return v, err
	case SpringParams:
		err := dec(&v)
		return v, err
	}
	return nil, fmt.Errorf("unsupported params type %T", p)
}

// Encode writes p as JSON with its layoutName.
func Encode(p Params) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidParams, err, "encode layout params")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode layout params")
	}
	name, _ := json.Marshal(p.LayoutName())
	fields["layoutName"] = name
	return json.Marshal(fields)
}

// =============================================================================
// Validation
// =============================================================================

func invalid(name Name, format string, args ...any) error {
	return errs.New(errs.ErrCodeInvalidParams, "%s: %s", name, fmt.Sprintf(format, args...))
}

func (c Common) validate(name Name) error {
	if c.NodeSize <= 0 {
		return invalid(name, "nodeSize must be positive, got %v", c.NodeSize)
	}
	if c.NodeFontSize < 0 {
		return invalid(name, "nodeFontSize must not be negative")
	}
	return nil
}

func (t Tiered) validate(name Name) error {
	switch t.Orientation {
	case Vertical, Horizontal:
	default:
		return invalid(name, "orientation must be %q or %q, got %q", Vertical, Horizontal, t.Orientation)
	}
	if t.TierSeparation <= 0 {
		return invalid(name, "tierSeparation must be positive")
	}
	return nil
}

// Validate checks the parameter values.
func (p CircularParams) Validate() error {
	if err := p.Common.validate(NameCircular); err != nil {
		return err
	}
	if p.Spacing <= 0 {
		return invalid(NameCircular, "spacing must be positive")
	}
	return nil
}

// Validate checks the parameter values.
func (p CustomParams) Validate() error { return p.Common.validate(NameCustom) }

// Validate checks the parameter values.
func (p ForceAtlas2Params) Validate() error {
	if err := p.Common.validate(NameForceAtlas2); err != nil {
		return err
	}
	switch {
	case p.Iterations < 0:
		return invalid(NameForceAtlas2, "iterations must not be negative")
	case p.ScalingRatio <= 0:
		return invalid(NameForceAtlas2, "scalingRatio must be positive")
	case p.SlowDown <= 0:
		return invalid(NameForceAtlas2, "slowDown must be positive")
	case p.BarnesHutTheta < 0:
		return invalid(NameForceAtlas2, "barnesHutTheta must not be negative")
	}
	return nil
}

// Validate checks the parameter values.
func (p FcoseParams) Validate() error {
	if err := p.Common.validate(NameFcose); err != nil {
		return err
	}
	if err := p.Tiered.validate(NameFcose); err != nil {
		return err
	}
	switch p.Quality {
	case QualityDraft, QualityDefault, QualityProof:
	default:
		return invalid(NameFcose, "quality must be draft, default or proof, got %q", p.Quality)
	}
	if p.IdealEdgeLength <= 0 || p.NodeSeparation <= 0 {
		return invalid(NameFcose, "idealEdgeLength and nodeSeparation must be positive")
	}
	if p.NumIter < 0 {
		return invalid(NameFcose, "numIter must not be negative")
	}
	return nil
}

// Validate checks the parameter values.
func (p PlanarParams) Validate() error {
	if err := p.Common.validate(NamePlanar); err != nil {
		return err
	}
	if err := p.Tiered.validate(NamePlanar); err != nil {
		return err
	}
	switch p.Layering {
	case LayeringLongestPath, LayeringSimplex:
	default:
		return invalid(NamePlanar, "layering must be %q or %q, got %q", LayeringLongestPath, LayeringSimplex, p.Layering)
	}
	if p.NodeSeparation <= 0 {
		return invalid(NamePlanar, "nodeSeparation must be positive")
	}
	return nil
}

// Validate checks the parameter values.
func (p MarketingParams) Validate() error {
	if err := p.Common.validate(NameMarketing); err != nil {
		return err
	}
	if err := p.Tiered.validate(NameMarketing); err != nil {
		return err
	}
	if p.Radius <= 0 || p.LinkDistance <= 0 {
		return invalid(NameMarketing, "radius and linkDistance must be positive")
	}
	return nil
}

// Validate checks the parameter values.
func (p SpringParams) Validate() error {
	if err := p.Common.validate(NameSpring); err != nil {
		return err
	}
	if err := p.Tiered.validate(NameSpring); err != nil {
		return err
	}
	switch {
	case p.LinkDistance <= 0:
		return invalid(NameSpring, "linkDistance must be positive")
	case p.VelocityDecay <= 0 || p.VelocityDecay >= 1:
		return invalid(NameSpring, "velocityDecay must be in (0, 1)")
	case p.TickIntervalMillis <= 0:
		return invalid(NameSpring, "tickIntervalMillis must be positive")
	case p.DebounceMillis < 0:
		return invalid(NameSpring, "debounceMillis must not be negative")
	}
	return nil
}
