// Command dashboard serves price views, the price estimator and listing
// assessments over the joined listings table.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listings-analytics/config"
	"listings-analytics/dashboard"
	"listings-analytics/estimator"
	"listings-analytics/services"
	"listings-analytics/storage"
	"listings-analytics/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger().WithRun(utils.NewRunID())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	var reader storage.TableReader
	if err := cfg.RequireDatabaseURL(); err != nil {
		logger.Warn("%v; reading %s", err, cfg.FallbackCSVPath)
	} else {
		store, err := storage.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Database unavailable: %v", err)
		} else {
			defer store.Close()
			reader = store
		}
	}

	source := services.NewDatasetLoader(reader, cfg.FallbackCSVPath, logger)
	srv := dashboard.NewServer(source, estimator.NewCache(estimator.DefaultOptions()), logger)
	if err := srv.Warm(ctx, os.Stdout); err != nil {
		logger.Error("No dataset yet, serving errors until /api/reload succeeds: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.DashboardAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("=== Dashboard listening on %s ===", cfg.DashboardAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
