package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphlayout/pkg/convert"
	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/pipeline"
	"github.com/matzehuels/graphlayout/pkg/render/nodelink"
)

// dotFlags holds the flags of the dot command.
type dotFlags struct {
	output    string // output file (default: stdout)
	positions string // layout JSON written by "layout"
	params    string
	strategy  string
	svg       bool // render through Graphviz instead of printing DOT
	detailed  bool
	noCache   bool
}

// dotCommand creates the dot command for DOT and SVG previews.
func (c *CLI) dotCommand() *cobra.Command {
	var f dotFlags

	cmd := &cobra.Command{
		Use:   "dot [graph.json]",
		Short: "Preview a layout as Graphviz DOT or SVG",
		Long: `Preview a layout as Graphviz DOT or SVG.

Positions come from --positions (a layout JSON written by the layout
command) or are computed with --layout / --params. Nodes are pinned at
their positions; Graphviz only routes edges and draws.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDOT(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&f.positions, "positions", "", "layout JSON with node positions")
	cmd.Flags().StringVarP(&f.params, "params", "p", "", "layout parameter file (.json, .toml, .yaml)")
	cmd.Flags().StringVarP(&f.strategy, "layout", "l", "", "strategy used when --positions is not given")
	cmd.Flags().BoolVar(&f.svg, "svg", false, "render SVG through Graphviz")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "include categories and positions in node labels")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runDOT(cmd *cobra.Command, input string, f dotFlags) error {
	ctx := cmd.Context()
	decl, err := readGraph(cmd, input)
	if err != nil {
		return err
	}

	var dot string
	if f.positions != "" {
		dot, err = dotFromFile(decl, f.positions, f.detailed)
	} else {
		dot, err = c.dotFromLayout(ctx, decl, f)
	}
	if err != nil {
		return err
	}

	data := []byte(dot)
	if f.svg {
		if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
			return err
		}
	}
	return writeOutput(cmd.OutOrStdout(), f.output, data)
}

// dotFromFile pins decl's nodes at the positions stored in a layout file.
func dotFromFile(decl graph.Graph, path string, detailed bool) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidPath, err, "read layout %s", path)
	}
	var u layout.Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "decode layout %s", path)
	}
	g, err := convert.Parse(decl)
	if err != nil {
		return "", err
	}
	return nodelink.ToDOT(g, u.Layout, nodelink.Options{Detailed: detailed}), nil
}

// dotFromLayout computes a layout through the cached pipeline.
func (c *CLI) dotFromLayout(ctx context.Context, decl graph.Graph, f dotFlags) (string, error) {
	params, err := c.resolveParams(f.params, f.strategy)
	if err != nil {
		return "", err
	}
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return "", fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, pipeline.Options{
		Graph:    decl,
		Params:   params,
		Formats:  []string{pipeline.FormatDOT},
		Detailed: f.detailed,
		Logger:   loggerFromContext(ctx),
	})
	if err != nil {
		return "", err
	}
	return string(res.Artifacts[pipeline.FormatDOT]), nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	printFile(path)
	return nil
}
