// Package pipeline runs one-shot layouts for the CLI and the HTTP API.
//
// The pipeline has three stages:
//
//  1. Parse: flatten the declarative graph into a simulation graph
//  2. Layout: run the configured strategy to completion
//  3. Render: produce the requested artifacts (JSON, DOT, SVG, PDF, PNG)
//
// Layout results are cached by graph hash and canonical parameters, so the
// same graph under the same parameters is laid out once. Strategies that
// keep running after Apply (spring) are stopped as soon as their first
// result is captured.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Graph:   decl,
//	    Params:  layout.NewPlanarParams(),
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatPNG:  true,
}

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Graph is the declarative graph to lay out.
	Graph graph.Graph `json:"graph"`
	// AvailableInputs enables latent-variable inference.
	AvailableInputs []string `json:"available_inputs,omitempty"`
	// Params selects and configures the strategy. Defaults to circular.
	Params layout.Params `json:"-"`

	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	// Refresh bypasses cached layouts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the simulation graph with computed positions stored on it.
	Graph *simgraph.Graph
	// GraphHash is the content hash of the declarative graph.
	GraphHash string
	// Update holds the computed positions and edge points.
	Update layout.Update
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	LayoutHit bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg, pdf, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Params == nil {
		o.Params = layout.NewCircularParams()
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutName returns the configured strategy name.
func (o *Options) LayoutName() string {
	if o.Params == nil {
		return ""
	}
	return string(o.Params.LayoutName())
}
