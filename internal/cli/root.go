package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the graphlayout CLI with the process arguments.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the command tree with explicit arguments and streams.
// Status output goes to stdout; logs go to stderr at info level, or debug
// level with --verbose.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var verbose bool

	prev := out
	out = stdout
	defer func() { out = prev }()

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	attach := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c.SetLogLevel(levelFor(verbose))
		return attach(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
