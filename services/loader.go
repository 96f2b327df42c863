package services

import (
	"context"
	"fmt"

	"listings-analytics/storage"
	"listings-analytics/utils"
)

// Loader copies a CSV file into a table of the relational store, replacing
// whatever the table held before.
type Loader struct {
	store  storage.TableReplacer
	logger *utils.Logger
}

func NewLoader(store storage.TableReplacer, logger *utils.Logger) *Loader {
	return &Loader{store: store, logger: logger}
}

// LoadCSV reads path as a file of table and replaces the table with its rows.
// A file that cannot be read or parsed leaves the table untouched.
func (l *Loader) LoadCSV(ctx context.Context, path string, table storage.Table) (int, error) {
	rows, err := storage.ReadTableCSV(path, table)
	if err != nil {
		return 0, fmt.Errorf("loader: %w", err)
	}
	l.logger.WithField("table", table.Name).Info("[loader] Read %d rows from %s", len(rows), path)
	return l.LoadRows(ctx, table, rows)
}

// LoadRows replaces table with rows. Placeholders and empty strings are
// stored as NULL by the same rules LoadCSV applies.
func (l *Loader) LoadRows(ctx context.Context, table storage.Table, rows [][]any) (int, error) {
	logger := l.logger.WithField("table", table.Name)

	normalised, err := storage.NormaliseRows(table, rows)
	if err != nil {
		return 0, fmt.Errorf("loader: %w", err)
	}
	n, err := l.store.Replace(ctx, table, normalised)
	if err != nil {
		return 0, fmt.Errorf("loader: replace %s: %w", table.Name, err)
	}
	logger.Info("[loader] Table now holds %d rows", n)
	return n, nil
}
