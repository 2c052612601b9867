package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphlayout/pkg/convert"
	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

type tiersFlags struct {
	group   string
	rank    string
	orderBy string
	spec    string // JSON file with an explicit or descriptor spec
	inputs  string
	asJSON  bool
}

// tiersCommand creates the tiers command.
func (c *CLI) tiersCommand() *cobra.Command {
	var f tiersFlags

	cmd := &cobra.Command{
		Use:   "tiers [graph.json]",
		Short: "Resolve a tier spec against a graph",
		Long: `Resolve a tier spec against a graph and print the resulting tiers.

Tiers come either from --spec (a JSON file holding an array of tiers or a
descriptor object) or from --group with optional --rank and --order-by.
Group and order paths address node attributes with dots, for example
"meta.team".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := f.resolve()
			if err != nil {
				return err
			}
			decl, err := readGraph(cmd, args[0])
			if err != nil {
				return err
			}
			g, err := convert.Parse(decl, convert.WithAvailableInputs(splitList(f.inputs)))
			if err != nil {
				return err
			}
			resolved, err := tiers.Resolve(spec, g)
			if err != nil {
				return err
			}

			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if resolved == nil {
					resolved = [][]string{}
				}
				return enc.Encode(resolved)
			}
			printTiers(spec, g, resolved)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.group, "group", "", "attribute path naming each node's tier")
	cmd.Flags().StringVar(&f.rank, "rank", "", "group values in tier order (comma-separated)")
	cmd.Flags().StringVar(&f.orderBy, "order-by", "", "attribute path ordering nodes within a tier")
	cmd.Flags().StringVar(&f.spec, "spec", "", "JSON file with a tier spec")
	cmd.Flags().StringVar(&f.inputs, "inputs", "", "available input node ids (comma-separated)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print tiers as JSON")

	return cmd
}

func (f tiersFlags) resolve() (tiers.Spec, error) {
	switch {
	case f.spec != "" && f.group != "":
		return tiers.Spec{}, errs.New(errs.ErrCodeInvalidInput, "--spec and --group are mutually exclusive")
	case f.spec != "":
		data, err := os.ReadFile(f.spec)
		if err != nil {
			return tiers.Spec{}, errs.Wrap(errs.ErrCodeInvalidPath, err, "read tier spec")
		}
		var spec tiers.Spec
		if err := json.Unmarshal(data, &spec); err != nil {
			return tiers.Spec{}, errs.Wrap(errs.ErrCodeInvalidTiers, err, "decode tier spec %s", f.spec)
		}
		return spec, nil
	case f.group != "":
		spec := tiers.ByGroup(f.group, splitList(f.rank)...)
		spec.Descriptor.OrderNodesBy = f.orderBy
		return spec, nil
	}
	return tiers.Spec{}, errs.New(errs.ErrCodeInvalidInput, "one of --spec or --group is required")
}

func printTiers(spec tiers.Spec, g *simgraph.Graph, resolved [][]string) {
	if len(resolved) == 0 {
		printInfo("No tiers")
		return
	}
	printSuccess("Resolved %d tier(s)", len(resolved))
	for i, tier := range resolved {
		printKeyValue(fmt.Sprintf("tier %d", i), strings.Join(tier, ", "))
	}
	placed := tiers.Index(resolved)
	var loose []string
	for _, n := range g.Nodes() {
		if _, ok := placed[n]; !ok {
			loose = append(loose, n)
		}
	}
	if len(loose) > 0 {
		printDetail("untiered: %s", strings.Join(loose, ", "))
	}
	if p := spec.OrderPath(); p != "" {
		printDetail("order within tiers by %s", p)
	}
}
