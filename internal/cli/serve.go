package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/rootseek"
	"github.com/aretw0/rootseek/internal/config"
	httpAdapter "github.com/aretw0/rootseek/pkg/adapters/http"
	"github.com/aretw0/rootseek/pkg/observability"
)

// ShutdownTimeout gives outstanding requests a deadline when the server stops.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Config config.Config
	Logger *slog.Logger
	Debug  bool
	Addr   string
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	metrics := observability.NewMetrics()

	engine, err := NewEngine(opts.Config, logger, opts.Debug, metrics.Hooks())
	if err != nil {
		return err
	}

	sessions, closeStore, err := OpenSessions(ctx, opts.Config, logger)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer closeStore()

	srv := &http.Server{
		Addr: opts.Addr,
		Handler: httpAdapter.NewHandler(engine,
			httpAdapter.WithSessions(sessions),
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(rootseek.Version),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting rootseek server", "address", srv.Addr, "store", opts.Config.Store.Kind)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("rootseek server stopped gracefully")
		return nil
	})
	return g.Wait()
}
