package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/render"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the category, node class and position to labels.
	Detailed bool
	// Scale multiplies layout coordinates. Zero means 1.
	Scale float64
}

// ToDOT converts g to DOT, pinning nodes at pos. Layout y grows downward
// and Graphviz y grows upward, so y is flipped.
func ToDOT(g *simgraph.Graph, pos layout.Positions, opts Options) string {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.1,0.05\"];\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		attrs, _ := g.NodeAttributes(id)
		out := []string{fmt.Sprintf("label=%q", fmtLabel(id, attrs, pos, opts.Detailed))}
		out = append(out, styleAttrs(attrs.Str(simgraph.AttrCategory))...)
		if p, ok := pos[id]; ok {
			out = append(out, fmt.Sprintf("pos=\"%s,%s!\"", num(p.X*scale), num(-p.Y*scale)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(out, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		switch graph.EdgeType(e.Attributes.Str(simgraph.AttrEdgeType)) {
		case graph.EdgeUndirected:
			fmt.Fprintf(&buf, "  %q -> %q [dir=none];\n", e.Source, e.Target)
		case graph.EdgeBackwardsDirected:
			fmt.Fprintf(&buf, "  %q -> %q [dir=back];\n", e.Source, e.Target)
		default:
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

func fmtLabel(id string, attrs simgraph.Attributes, pos layout.Positions, detailed bool) string {
	label := attrs.Str(simgraph.Rendering(graph.PropLabel))
	if label == "" {
		label = id
	}
	if !detailed {
		return label
	}

	parts := []string{"category: " + attrs.Str(simgraph.AttrCategory)}
	if class := attrs.Str(simgraph.AttrNodeClass); class != "" {
		parts = append(parts, "class: "+class)
	}
	if p, ok := pos[id]; ok {
		parts = append(parts, fmt.Sprintf("pos: %.1f, %.1f", p.X, p.Y))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

var categoryStyles = map[string][]string{
	simgraph.CategoryTarget: {"fillcolor=\"#cfe2ff\"", "penwidth=2"},
	simgraph.CategoryLatent: {"style=\"rounded,filled,dashed\"", "fillcolor=lightgrey"},
}

func styleAttrs(category string) []string {
	return slices.Clone(categoryStyles[category])
}

// RenderSVG renders DOT source to SVG with neato, keeping pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag with one that scales.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT source as PDF via SVG.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
