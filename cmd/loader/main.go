// Command loader replaces a table with the contents of a CSV file:
//
//	loader <table> <csv-path>
//
// table is one of complex_ratings, listings or joined_listings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"listings-analytics/config"
	"listings-analytics/services"
	"listings-analytics/storage"
	"listings-analytics/utils"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: loader <table> <csv-path>")
		os.Exit(2)
	}

	cfg := config.Load()
	logger := utils.NewLogger().WithRun(utils.NewRunID())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1], os.Args[2]); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger, tableName, path string) error {
	if err := cfg.RequireDatabaseURL(); err != nil {
		return err
	}
	table, err := storage.TableByName(tableName)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := services.NewLoader(store, logger).LoadCSV(ctx, path, table)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d rows from %s into %s (%s)", n, path, table.Name, store.Dialect().Name)
	return nil
}
