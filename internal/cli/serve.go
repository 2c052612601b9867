package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphlayout/pkg/api"
	"github.com/matzehuels/graphlayout/pkg/config"
	"github.com/matzehuels/graphlayout/pkg/storage"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		Long: `Serve the layout engine over HTTP.

Backends come from the settings file: the layout cache (none, file, redis)
and the graph store (memory, mongo). GRAPHLAYOUT_REDIS_URL,
GRAPHLAYOUT_MONGO_URI and GRAPHLAYOUT_ADDR override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	s, err := c.loadSettings()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = s.Server.Addr
	}
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := openStore(ctx, s.Storage)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("closing store", "err", err)
		}
	}()

	params, err := c.resolveParams("", "")
	if err != nil {
		return err
	}

	server := api.New(api.Options{
		Runner:        runner,
		Store:         store,
		Logger:        logger,
		MaxBodyBytes:  s.Server.MaxBodyBytes,
		DefaultParams: params,
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("listening", "addr", addr, "cache", s.Cache.Backend, "storage", s.Storage.Backend, "layout", params.LayoutName())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// openStore opens the configured graph store.
func openStore(ctx context.Context, s config.StorageSettings) (storage.Store, error) {
	switch s.Backend {
	case config.StorageMongo:
		return storage.NewMongoStore(ctx, s.MongoURI, s.Database)
	case config.StorageMemory, "":
		return storage.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidSettings, s.Backend)
}
