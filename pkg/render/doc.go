// Package render turns positioned graphs into pictures for debugging.
//
// The [nodelink] subpackage writes Graphviz DOT with every node pinned at
// its computed position and renders it to SVG in-process. [ToPDF] and
// [ToPNG] convert that SVG with the external rsvg-convert tool.
//
// None of this is the interactive canvas; it exists so layouts can be
// inspected from the CLI.
package render
