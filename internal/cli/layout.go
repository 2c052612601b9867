package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphlayout/pkg/pipeline"
)

// layoutFlags holds the flags of the layout command.
type layoutFlags struct {
	output   string // output base path (default: input without extension)
	params   string // layout parameter file (json, toml, yaml)
	strategy string // strategy name when no params file is given
	inputs   string // comma-separated available input node ids
	formats  string // comma-separated output formats
	detailed bool   // detailed node labels in DOT output
	scale    float64
	noCache  bool
	refresh  bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a layout for a graph file",
		Long: `Compute a layout for a declarative graph file.

The graph is laid out with the strategy named by --layout, or with the
parameters in --params (JSON, TOML or YAML). Without either the default
from the settings file is used.

Outputs are written next to the input as <base>.layout.json, <base>.dot,
<base>.svg and so on, one per --format. Layouts are cached; pass --refresh
to recompute or --no-cache to bypass the cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().StringVarP(&f.params, "params", "p", "", "layout parameter file (.json, .toml, .yaml)")
	cmd.Flags().StringVarP(&f.strategy, "layout", "l", "", "strategy: circular, custom, force-atlas-2, fcose, planar, marketing, spring")
	cmd.Flags().StringVar(&f.inputs, "inputs", "", "available input node ids (comma-separated)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatJSON, "output format(s): json, dot, svg, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "include categories and positions in node labels")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runLayout loads the graph, runs the pipeline and writes each artifact.
func (c *CLI) runLayout(cmd *cobra.Command, input string, f layoutFlags) error {
	ctx := cmd.Context()
	g, err := readGraph(cmd, input)
	if err != nil {
		return err
	}
	params, err := c.resolveParams(f.params, f.strategy)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Graph:           g,
		AvailableInputs: splitList(f.inputs),
		Params:          params,
		Formats:         splitList(f.formats),
		Detailed:        f.detailed,
		Scale:           f.scale,
		Refresh:         f.refresh,
		Logger:          loggerFromContext(ctx),
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Computing %s layout...", opts.LayoutName()))
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	base := basePath(f.output, input)
	paths, err := writeArtifacts(base, opts.Formats, res.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Layout complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, opts.LayoutName(), res.CacheInfo.LayoutHit)
	if !slices.Contains(opts.Formats, pipeline.FormatSVG) {
		fmt.Fprintln(out)
		printNextStep("Preview", fmt.Sprintf("%s dot %s --positions %s --svg", appName, input, base+".layout.json"))
	}
	return nil
}

// basePath derives the output base path from --output or the input file.
func basePath(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if input == "-" {
		return "graph"
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// artifactPath names the file for one format. JSON layouts get a
// ".layout.json" suffix so they never overwrite the input graph.
func artifactPath(base, format string) string {
	if format == pipeline.FormatJSON {
		return base + ".layout.json"
	}
	return base + "." + format
}

func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(base, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
