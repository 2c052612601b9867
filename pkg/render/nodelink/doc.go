// Package nodelink renders positioned causal graphs as Graphviz diagrams.
//
// [ToDOT] writes DOT source in which every node carries a pinned pos
// attribute taken from a computed layout, so Graphviz draws the graph where
// the layout put it instead of laying it out again. [RenderSVG] renders that
// source in-process with neato.
//
//	dot := nodelink.ToDOT(g, result.Layout, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes without a position are left for neato to place. Targets are filled,
// latent variables are dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion goes through [render.ToPDF] and
// [render.ToPNG], which require librsvg.
package nodelink
