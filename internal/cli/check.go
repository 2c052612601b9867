package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphlayout/pkg/check"
	"github.com/matzehuels/graphlayout/pkg/convert"
	"github.com/matzehuels/graphlayout/pkg/pipeline"
)

// errCyclic makes "check dag" exit non-zero on cyclic graphs.
var errCyclic = errors.New("graph contains cycles")

// checkCommand creates the check command group.
func (c *CLI) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check graphs and edits for cycles",
	}

	cmd.AddCommand(c.checkCycleCommand())
	cmd.AddCommand(c.checkDAGCommand())

	return cmd
}

// checkCycleCommand creates the "check cycle" subcommand.
func (c *CLI) checkCycleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle [graph.json] [source] [target]",
		Short: "Report whether adding source → target would create a cycle",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, err := readGraph(cmd, args[0])
			if err != nil {
				return err
			}
			g, err := convert.Parse(decl)
			if err != nil {
				return err
			}
			source, target := args[1], args[2]
			if check.WouldCreateCycle(g, source, target) {
				printWarning("%s → %s would create a cycle", source, target)
				return errCyclic
			}
			printSuccess("%s → %s keeps the graph acyclic", source, target)
			return nil
		},
	}
}

// checkDAGCommand creates the "check dag" subcommand.
func (c *CLI) checkDAGCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "dag [graph.json]",
		Short: "Report whether a graph is acyclic and list its cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			decl, err := readGraph(cmd, args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			ok, err := runner.IsDAG(ctx, pipeline.Options{Graph: decl})
			if err != nil {
				return err
			}
			if ok {
				printSuccess("Graph is acyclic")
				return nil
			}

			g, err := convert.Parse(decl)
			if err != nil {
				return err
			}
			cycles := check.CyclicComponents(g)
			printWarning("Graph contains %d cyclic component(s)", len(cycles))
			for _, comp := range cycles {
				printDetail("%s", strings.Join(comp, ", "))
			}
			return errCyclic
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
