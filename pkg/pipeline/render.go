package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/render"
	"github.com/matzehuels/graphlayout/pkg/render/nodelink"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// RenderFromLayout produces the requested artifacts for a laid-out graph.
// SVG is rendered at most once and reused for PDF and PNG.
func RenderFromLayout(ctx context.Context, g *simgraph.Graph, u layout.Update, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	dot := nodelink.ToDOT(g, u.Layout, nodelink.Options{Detailed: opts.Detailed})

	var svg []byte
	renderSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, dot)
		return svg, err
	}

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = json.MarshalIndent(u, "", "  ")
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = renderSVG()
		case FormatPDF:
			if data, err = renderSVG(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatPNG:
			if data, err = renderSVG(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
