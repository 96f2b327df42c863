package krisha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"listings-analytics/config"
	"listings-analytics/models"
	"listings-analytics/utils"
)

const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
	acceptLanguage = "ru-RU,ru;q=0.9,en-US;q=0.8"
)

// retryStatuses are the server answers worth asking again.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// StatusError is returned for a non-2xx answer.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// FetchResult is everything one pagination pass produced.
type FetchResult struct {
	Records      []models.ListingRecord
	PagesFetched int
	PagesFailed  []int
	// Exhausted is true when a page came back without cards.
	Exhausted bool
}

// Fetcher walks the krisha.kz search results page by page.
type Fetcher struct {
	client          *http.Client
	searchURL       string
	apiBase         string
	maxPages        int
	failedPageDelay time.Duration
	snapshotPath    string
	logger          *utils.Logger
	retry           *utils.RetryConfig
	pacer           *utils.Pacer
}

// New creates a Fetcher from the configuration.
func New(cfg *config.Config, logger *utils.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		searchURL:       cfg.KrishaSearchURL(),
		apiBase:         cfg.KrishaAPIBase,
		maxPages:        cfg.KrishaMaxPages,
		failedPageDelay: cfg.FailedPageDelay,
		snapshotPath:    cfg.FirstPageSnapshotPath,
		logger:          logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay,
			Logger:      logger,
		},
		pacer: utils.NewPacer(cfg.PageDelay),
	}
}

// Fetch requests pages 1..maxPages and stops early at the first page without
// cards. A page that still fails after retries is logged and skipped. Only a
// cancelled context ends the pass with an error; the records collected so far
// are returned with it.
func (f *Fetcher) Fetch(ctx context.Context) (*FetchResult, error) {
	result := &FetchResult{}

	for page := 1; page <= f.maxPages; page++ {
		if err := f.pacer.Wait(ctx); err != nil {
			return result, err
		}

		body, err := f.fetchPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			f.logger.Warn("[krisha] page %d failed: %v", page, err)
			result.PagesFailed = append(result.PagesFailed, page)
			if err := utils.Sleep(ctx, f.failedPageDelay); err != nil {
				return result, err
			}
			continue
		}
		result.PagesFetched++

		if page == 1 {
			f.saveSnapshot(body)
		}

		records, err := ParseCards(body, f.apiBase)
		if err != nil {
			f.logger.Warn("[krisha] page %d unreadable: %v", page, err)
			result.PagesFailed = append(result.PagesFailed, page)
			continue
		}
		if len(records) == 0 {
			f.logger.Info("[krisha] No more listings found on page %d, stopping.", page)
			result.Exhausted = true
			break
		}

		result.Records = append(result.Records, records...)
		f.logger.Info("[krisha] Page %d → collected %d listings so far", page, len(result.Records))
	}

	return result, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, page int) ([]byte, error) {
	u, err := url.Parse(f.searchURL)
	if err != nil {
		return nil, fmt.Errorf("krisha: bad search url %q: %w", f.searchURL, err)
	}
	q := u.Query()
	q.Set("has_photo", "1")
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	var body []byte
	err = f.retry.Do(ctx, fmt.Sprintf("krisha page %d", page), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return utils.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", acceptLanguage)

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return utils.Permanent(ctx.Err())
			}
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, resp.Body)
			statusErr := &StatusError{Code: resp.StatusCode}
			if retryStatuses[resp.StatusCode] {
				return statusErr
			}
			return utils.Permanent(statusErr)
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		body = b
		return nil
	})
	return body, err
}

// saveSnapshot keeps the first page on disk for selector debugging.
func (f *Fetcher) saveSnapshot(body []byte) {
	if f.snapshotPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.snapshotPath), 0755); err != nil {
		f.logger.Warn("[krisha] snapshot dir: %v", err)
		return
	}
	if err := os.WriteFile(f.snapshotPath, body, 0644); err != nil {
		f.logger.Warn("[krisha] snapshot: %v", err)
	}
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
