package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"listings-analytics/models"
	"listings-analytics/storage"
	"listings-analytics/utils"
)

// Dataset sources.
const (
	SourceDatabase = "database"
	SourceFile     = "file"
)

// Dataset is the joined listings table as loaded for the dashboard.
type Dataset struct {
	Listings []models.JoinedListing
	// Source says where the rows came from.
	Source string
	// PrimaryErr is why the database was not used when Source is SourceFile.
	PrimaryErr error
	// Fingerprint identifies the content; equal rows give equal fingerprints.
	Fingerprint string
	LoadedAt    time.Time
}

// DatasetLoader reads the joined table from the store and falls back to a
// CSV file when the store is not configured or fails.
type DatasetLoader struct {
	reader       storage.TableReader
	fallbackPath string
	logger       *utils.Logger
}

// NewDatasetLoader creates a loader. reader may be nil when no database is
// configured, in which case only the fallback file is used.
func NewDatasetLoader(reader storage.TableReader, fallbackPath string, logger *utils.Logger) *DatasetLoader {
	return &DatasetLoader{reader: reader, fallbackPath: fallbackPath, logger: logger}
}

// Load returns the dataset, or an error when neither source can be read.
func (d *DatasetLoader) Load(ctx context.Context) (*Dataset, error) {
	var primaryErr error
	if d.reader == nil {
		primaryErr = errors.New("no database configured")
	} else {
		rows, err := d.reader.ReadTable(ctx, storage.JoinedListings)
		if err == nil {
			return d.build(rows, SourceDatabase, nil)
		}
		primaryErr = err
	}

	d.logger.Error("[dataset] Database unavailable, using %s: %v", d.fallbackPath, primaryErr)
	rows, err := storage.ReadTableCSV(d.fallbackPath, storage.JoinedListings)
	if err != nil {
		return nil, fmt.Errorf("dataset: database: %v; fallback: %w", primaryErr, err)
	}
	return d.build(rows, SourceFile, primaryErr)
}

func (d *DatasetLoader) build(rows [][]any, source string, primaryErr error) (*Dataset, error) {
	listings := make([]models.JoinedListing, 0, len(rows))
	for i, row := range rows {
		l, err := storage.JoinedFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: %w", i+1, err)
		}
		listings = append(listings, l)
	}
	d.logger.Info("[dataset] Loaded %d listings from %s", len(listings), source)
	return &Dataset{
		Listings:    listings,
		Source:      source,
		PrimaryErr:  primaryErr,
		Fingerprint: fingerprint(rows),
		LoadedAt:    time.Now(),
	}, nil
}

// fingerprint hashes the rows in order.
func fingerprint(rows [][]any) string {
	h := sha256.New()
	for _, row := range rows {
		for _, v := range row {
			if v == nil {
				h.Write([]byte{0})
			} else {
				h.Write([]byte{1})
				h.Write([]byte(storage.FormatValue(v)))
			}
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
