package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listings-analytics/config"
	"listings-analytics/storage"
	"listings-analytics/utils"
)

func TestRunKeepsPartialListingsWhenInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `<html><body>`+
				`<div class="a-card__inc"><a class="a-card__image" href="/a/show/1"></a><div class="a-card__descr">2-комнатная</div></div>`+
				`<div class="a-card__inc"><a class="a-card__image" href="/a/show/2"></a><div class="a-card__descr">студия</div></div>`+
				`</body></html>`)
			return
		}
		// the operator interrupts while page 2 is loading
		cancel()
		<-r.Context().Done()
	}))
	defer srv.Close()

	csvPath := filepath.Join(t.TempDir(), "listings.csv")
	cfg := &config.Config{
		DatabaseURL:     "sqlite://" + filepath.Join(t.TempDir(), "never-opened.db"),
		KrishaAPIBase:   srv.URL,
		KrishaCity:      "astana",
		KrishaMaxPages:  5,
		RequestTimeout:  5 * time.Second,
		MaxRetries:      1,
		RetryBaseDelay:  time.Millisecond,
		ListingsCSVPath: csvPath,
	}

	err := run(ctx, cfg, utils.NewDiscardLogger())
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)

	rows, err := storage.ReadTableCSV(csvPath, storage.Listings)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, srv.URL+"/a/show/1", rows[0][1])
}

func TestRunRequiresDatabaseURL(t *testing.T) {
	cfg := &config.Config{ListingsCSVPath: filepath.Join(t.TempDir(), "listings.csv")}
	err := run(context.Background(), cfg, utils.NewDiscardLogger())
	assert.True(t, errors.Is(err, config.ErrMissingDatabaseURL))
}
