// Package pkg provides the core libraries for graphlayout, a layout engine
// for causal graphs.
//
// # Overview
//
// A causal graph is a set of variables and the directed edges between them.
// graphlayout computes 2D positions for such graphs under seven layout
// strategies, keeps them consistent while a user edits the graph, and
// refuses edits that would introduce a cycle. The pkg directory is organized
// into four main areas:
//
//  1. Model: [graph], [simgraph], [convert]
//  2. Algorithms: [check], [tiers], [layout] and its strategy subpackages
//  3. Runtime: [host], [editor]
//  4. Infrastructure: [pipeline], [cache], [storage], [config], [api], [render]
//
// # Architecture
//
// The typical data flow through graphlayout:
//
//	Declarative graph (JSON)
//	         ↓
//	    [convert] package (flatten into a simulation graph)
//	         ↓
//	    [layout/strategy] package (pick the strategy for the params)
//	         ↓
//	    [host] package (run it on a worker, coalesce ticks)
//	         ↓
//	    positions + edge points (JSON, DOT, SVG)
//
// # Quick Start
//
// Lay out a graph file with the spring strategy:
//
//	decl, _ := graph.ReadFile("graph.json")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    Graph:  decl,
//	    Params: layout.NewSpringParams(),
//	})
//	fmt.Println(string(res.Artifacts[pipeline.FormatJSON]))
//
// # Main Packages
//
// [graph] - The declarative node/edge document exchanged with callers.
//
// [simgraph] - The mutable attributed graph layouts run on, with change
// events and snapshots.
//
// [convert] - Adapter between the two, including category assignment and
// the available-inputs filter.
//
// [check] - Cycle detection for proposed edges and whole graphs.
//
// [tiers] - Tier specs (explicit lists or grouped by a node attribute) and
// their resolution against a graph.
//
// [layout] - Parameter types, the params codec and the [layout.Layout]
// interface. Each strategy lives in its own subpackage; [layout/strategy]
// maps params to a strategy.
//
// [host] - Runs one layout at a time on a worker and delivers coalesced
// position updates.
//
// [editor] - An editing session: cycle-checked edits applied to the graph
// and forwarded to the host.
//
// [pipeline] - One-shot parse → layout → render, cached, used by the CLI
// and the API.
//
// [render] - DOT/SVG previews and SVG to PDF/PNG conversion.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/layout/...      # Specific package
//	go test -run Example ./pkg/...
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/graph
// [simgraph]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/simgraph
// [convert]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/convert
// [check]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/check
// [tiers]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/tiers
// [layout]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/layout
// [layout/strategy]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/layout/strategy
// [host]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/host
// [editor]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/editor
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/storage
// [config]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/config
// [api]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/api
// [render]: https://pkg.go.dev/github.com/matzehuels/graphlayout/pkg/render
package pkg
