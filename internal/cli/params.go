package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphlayout/pkg/config"
	"github.com/matzehuels/graphlayout/pkg/layout"
)

// paramsCommand creates the params command.
func (c *CLI) paramsCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "params [layout]",
		Short: "Print the default parameters of a layout strategy",
		Long: `Print the default parameters of a layout strategy.

The output is a complete parameter file that layout, dot and simulate
accept through --params. Without an argument every strategy name is listed.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: layoutNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, n := range layout.Names {
					printInfo("%s", n)
				}
				return nil
			}
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}
			p, err := layout.New(layout.Name(args[0]))
			if err != nil {
				return err
			}
			data, err := config.EncodeParams(p, f)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatTOML), "output format: json, toml, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func layoutNames() []string {
	names := make([]string, len(layout.Names))
	for i, n := range layout.Names {
		names[i] = string(n)
	}
	return names
}
