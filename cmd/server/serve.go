package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"qms/internal/platform/config"
	"qms/internal/platform/httpserver"
	"qms/internal/platform/logger"
	httptransport "qms/internal/transport/http"
)

func newServeCmd() *cobra.Command {
	var addr, store string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if store != "" {
				cfg.Store = store
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides QMS_ADDR)")
	cmd.Flags().StringVar(&store, "store", "", "memory or postgres (overrides QMS_STORE)")
	return cmd
}

// serve blocks until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, cfg config.Server) error {
	log := logger.New(cfg.Log)

	deps, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Metrics:   deps.metrics,
		Gatherer:  prometheus.DefaultGatherer,
		Validator: validator(cfg.Auth, log),
		Checks:    deps.checks,
		Modules:   modules(deps),
	})
	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting qms", "addr", cfg.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
