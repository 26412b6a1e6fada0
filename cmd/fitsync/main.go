package main

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

	"github.com/alexjbarnes/fitsync/internal/api"
	"github.com/alexjbarnes/fitsync/internal/config"
	apperrors "github.com/alexjbarnes/fitsync/internal/errors"
	"github.com/alexjbarnes/fitsync/internal/logging"
	"github.com/alexjbarnes/fitsync/internal/observability"
	"github.com/alexjbarnes/fitsync/internal/refdata"
	"github.com/alexjbarnes/fitsync/internal/store"
	syncengine "github.com/alexjbarnes/fitsync/internal/sync"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)
	logger.Info("fitsync starting",
		slog.String("version", Version),
		slog.String("owner", cfg.OwnerID),
		slog.Duration("interval", cfg.SyncInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.OpenAt(cfg.StateDB)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	defer st.Close()

	client := api.NewClient(cfg.BaseURL, cfg.Token, nil)

	engine := syncengine.NewEngine(st, client, client, logging.WithComponent(logger, "engine"))
	engine.OnResult = observability.RecordSyncRun

	refresher := refdata.NewRefresher(st, client, logging.WithComponent(logger, "refdata"))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runSyncLoop(gctx, cfg, engine, refresher, logger)
	})

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return runMetricsServer(gctx, cfg.MetricsAddr, logger)
		})
	}

	return g.Wait()
}

// runSyncLoop syncs immediately, then on every tick until shutdown.
// A stale token stops the daemon: retrying with the same credentials
// cannot succeed.
func runSyncLoop(ctx context.Context, cfg *config.Config, engine *syncengine.Engine, refresher *refdata.Refresher, logger *slog.Logger) error {
	if err := syncOnce(ctx, cfg, engine, refresher, logger); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("sync loop stopping")
			return ctx.Err()

		case <-ticker.C:
			if err := syncOnce(ctx, cfg, engine, refresher, logger); err != nil {
				return err
			}
		}
	}
}

func syncOnce(ctx context.Context, cfg *config.Config, engine *syncengine.Engine, refresher *refdata.Refresher, logger *slog.Logger) error {
	if _, err := engine.SyncActivities(ctx, cfg.OwnerID); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return fmt.Errorf("token rejected, update FITSYNC_TOKEN: %w", err)
		}

		return err
	}

	if _, err := engine.SyncExercises(ctx, cfg.OwnerID); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return fmt.Errorf("token rejected, update FITSYNC_TOKEN: %w", err)
		}

		return err
	}

	err := refresher.Refresh(ctx)
	observability.RecordRefresh(err)

	if err != nil {
		// Stale reference data is not fatal; the next tick retries.
		logger.Warn("reference data refresh failed", slog.String("error", err.Error()))
	}

	return nil
}

// runMetricsServer serves prometheus metrics and a liveness endpoint.
func runMetricsServer(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("starting metrics server", slog.String("listen", addr))

	// Shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		logger.Info("shutting down metrics server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server error: %w", err)
	}

	return nil
}
