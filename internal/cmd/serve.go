package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Weigh/internal/api"
	"github.com/MikeSquared-Agency/Weigh/internal/broker"
	"github.com/MikeSquared-Agency/Weigh/internal/hermes"
	"github.com/MikeSquared-Agency/Weigh/internal/logging"
	"github.com/MikeSquared-Agency/Weigh/internal/metrics"
	"github.com/MikeSquared-Agency/Weigh/internal/store"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, metrics server and NATS responder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging, os.Stdout)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Database (optional; without it only stateless evaluation is served)
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := connectWithRetry(ctx, "database", cfg.Database.ConnectTimeout, logger, func() (*store.PostgresStore, error) {
			pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
			if errors.Is(err, store.ErrSchemaMissing) {
				return nil, backoff.Permanent(err)
			}
			return pg, err
		})
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pg.Close()
		db = pg
		logger.Info("connected to database")
	} else {
		logger.Warn("no database configured, decision routes disabled")
	}

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := connectWithRetry(ctx, "hermes", cfg.Database.ConnectTimeout, logger, func() (*hermes.NATSClient, error) {
			return hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		})
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	if hermesClient != nil {
		responder := broker.New(hermesClient, m, cfg, logger)
		if err := responder.SetupSubscriptions(); err != nil {
			logger.Warn("failed to subscribe to evaluate requests", "error", err)
		}
		responder.Start(ctx)
		defer responder.Stop()
		logger.Info("responder started", "workers", cfg.Evaluation.BatchConcurrency)
	}

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(db, hermesClient, m, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(db, hermesClient, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case serveErr = <-errCh:
		logger.Error("server failed, shutting down", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
	return serveErr
}

// connectWithRetry retries connect with exponential backoff until it succeeds,
// returns a permanent error, or maxElapsed passes.
func connectWithRetry[T any](ctx context.Context, target string, maxElapsed time.Duration, logger *slog.Logger, connect backoff.Operation[T]) (T, error) {
	return backoff.Retry(ctx, connect,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("connect failed, retrying", "target", target, "error", err, "retry_in", next)
		}),
	)
}
