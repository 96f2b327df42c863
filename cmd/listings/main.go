// Command listings collects apartment listings from krisha.kz and replaces
// the listings table with them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"listings-analytics/config"
	"listings-analytics/scraper/krisha"
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
	if err := cfg.RequireDatabaseURL(); err != nil {
		return err
	}

	logger.Info("=== krisha.kz listings fetch starting ===")
	logger.Info("Config: %s | pages: %d | retries: %d | delay: %s",
		cfg.KrishaSearchURL(), cfg.KrishaMaxPages, cfg.MaxRetries, cfg.PageDelay)

	result, err := krisha.New(cfg, logger).Fetch(ctx)
	if err != nil {
		// an interrupted run keeps what it collected on disk, the table is left alone
		if result != nil && len(result.Records) > 0 {
			rows := storage.ListingRows(services.NewCleaner(logger).CleanListings(result.Records))
			if werr := storage.WriteTableCSV(cfg.ListingsCSVPath, storage.Listings, rows); werr != nil {
				logger.Error("CSV write of partial results failed: %v", werr)
			} else {
				logger.Warn("Interrupted, %d partial listings saved to %s", len(rows), cfg.ListingsCSVPath)
			}
		}
		return err
	}
	if len(result.PagesFailed) > 0 {
		logger.Warn("%d pages skipped after retries: %v", len(result.PagesFailed), result.PagesFailed)
	}

	records := services.NewCleaner(logger).CleanListings(result.Records)
	if len(records) == 0 {
		logger.Info("No items scraped, listings left untouched")
		return nil
	}
	rows := storage.ListingRows(records)

	if err := storage.WriteTableCSV(cfg.ListingsCSVPath, storage.Listings, rows); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Listings saved to %s", cfg.ListingsCSVPath)
	}

	store, err := storage.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := services.NewLoader(store, logger).LoadRows(ctx, storage.Listings, rows)
	if err != nil {
		return err
	}
	logger.Info("=== Done: %d listings from %d pages stored in %s ===", n, result.PagesFetched, storage.Listings.Name)
	return nil
}
