package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listings-analytics/config"
	"listings-analytics/storage"
	"listings-analytics/utils"
)

func TestRunWithoutDatabaseURLWritesNothing(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "listings.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("details,link\nстудия,https://krisha.kz/a/show/1\n"), 0644))

	err := run(context.Background(), &config.Config{}, utils.NewDiscardLogger(), "listings", csvPath)
	assert.True(t, errors.Is(err, config.ErrMissingDatabaseURL))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no database file may be created")
}

func TestRunUnknownTable(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "never-opened.db")}
	err := run(context.Background(), cfg, utils.NewDiscardLogger(), "prices", "unused.csv")
	assert.True(t, errors.Is(err, storage.ErrUnknownTable))
}

func TestRunLoadsIntoSQLite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "listings.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("details,link\nа,x\nб,\nв,z\n"), 0644))
	dbPath := filepath.Join(dir, "listings.db")

	cfg := &config.Config{DatabaseURL: "sqlite://" + dbPath}
	require.NoError(t, run(context.Background(), cfg, utils.NewDiscardLogger(), "listings", csvPath))

	store, err := storage.Open(context.Background(), cfg.DatabaseURL, nil)
	require.NoError(t, err)
	defer store.Close()
	rows, err := store.ReadTable(context.Background(), storage.Listings)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
