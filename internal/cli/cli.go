// Package cli implements the graphlayout command-line interface.
//
// The CLI lays out declarative graph files, checks them for cycles, resolves
// tiers, previews layouts as DOT/SVG, runs a live spring simulation in the
// terminal, and serves the HTTP API. It is built with cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - layout: compute positions (and artifacts) for a graph file
//   - check: cycle and DAG checks
//   - tiers: resolve a tier spec against a graph
//   - dot: render a graph and its layout as DOT or a Graphviz SVG
//   - simulate: live spring simulation in the terminal
//   - serve: run the HTTP API
//   - cache: manage the layout cache
//   - params: print default layout parameters
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and injected into the runner and host.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphlayout/pkg/buildinfo"
	"github.com/matzehuels/graphlayout/pkg/cache"
	"github.com/matzehuels/graphlayout/pkg/config"
	"github.com/matzehuels/graphlayout/pkg/graph"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "graphlayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// settingsPath is bound to --config.
	settingsPath string
	settings     *config.Settings
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "graphlayout lays out causal graphs",
		Long:          `graphlayout computes 2D layouts for causal graphs under seven strategies, checks edits for cycles, resolves tiers, and serves the engine over HTTP.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.settingsPath, "config", config.DefaultPath(), "settings file")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.tiersCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.paramsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings and Backends
// =============================================================================

// loadSettings reads the settings file once per invocation.
func (c *CLI) loadSettings() (*config.Settings, error) {
	if c.settings != nil {
		return c.settings, nil
	}
	s, err := config.LoadSettings(c.settingsPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("settings loaded", "path", c.settingsPath, "cache", s.Cache.Backend, "storage", s.Storage.Backend)
	c.settings = s
	return s, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	s, err := c.loadSettings()
	if err != nil {
		return nil, err
	}
	switch s.Cache.Backend {
	case config.CacheFile:
		return cache.NewFileCache(s.Cache.Dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, s.Cache.RedisURL, s.Cache.Prefix)
	}
	return cache.NewNullCache(), nil
}

// =============================================================================
// Params and Input Helpers
// =============================================================================

// resolveParams picks layout parameters from, in order: a params file, a
// layout name, the settings' params file, the settings' default layout.
func (c *CLI) resolveParams(file, name string) (layout.Params, error) {
	if file != "" {
		return config.LoadParams(file)
	}
	if name != "" {
		return layout.New(layout.Name(name))
	}
	s, err := c.loadSettings()
	if err != nil {
		return nil, err
	}
	if s.Layout.Params != "" {
		return config.LoadParams(s.Layout.Params)
	}
	return layout.New(layout.Name(s.Layout.Default))
}

// readGraph loads a declarative graph; "-" reads stdin.
func readGraph(cmd *cobra.Command, path string) (graph.Graph, error) {
	if path == "-" {
		return graph.Read(cmd.InOrStdin())
	}
	g, err := graph.ReadFile(path)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("load graph %s: %w", path, err)
	}
	return g, nil
}

// splitList parses a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
