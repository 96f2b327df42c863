// Command ratings collects residential complex ratings from 2GIS and
// replaces the complex_ratings table with them.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"listings-analytics/config"
	"listings-analytics/scraper/twogis"
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

	logger.Info("=== 2GIS ratings fetch starting ===")
	logger.Info("Config: city %s | search %q | headless %t", cfg.TwoGISCity, cfg.TwoGISSearch, cfg.Headless)

	result, scrapeErr := twogis.New(cfg, logger).Scrape(ctx)
	if result == nil {
		return scrapeErr
	}
	if scrapeErr != nil {
		if !errors.Is(scrapeErr, twogis.ErrPaginationAborted) {
			return scrapeErr
		}
		logger.Warn("Pagination stopped early, keeping %d records from %d pages: %v",
			len(result.Records), result.Pages, scrapeErr)
	}

	records := services.NewCleaner(logger).CleanRatings(result.Records)
	if len(records) == 0 {
		logger.Info("No items scraped, complex_ratings left untouched")
		return scrapeErr
	}
	rows := storage.RatingRows(records)

	if err := storage.WriteTableCSV(cfg.RatingsCSVPath, storage.ComplexRatings, rows); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Ratings saved to %s", cfg.RatingsCSVPath)
	}

	store, err := storage.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := services.NewLoader(store, logger).LoadRows(ctx, storage.ComplexRatings, rows)
	if err != nil {
		return err
	}
	logger.Info("=== Done: %d ratings stored in %s ===", n, storage.ComplexRatings.Name)
	return scrapeErr
}
