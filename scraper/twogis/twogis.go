package twogis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"listings-analytics/config"
	"listings-analytics/models"
	"listings-analytics/utils"
)

// ErrPaginationAborted means a page failed before the results ran out. The
// records gathered up to that page are still returned alongside it.
var ErrPaginationAborted = errors.New("twogis: pagination aborted")

const (
	implicitWait = 10 * time.Second
	scrollPause  = 1 * time.Second
	clickPause   = 2 * time.Second
	loadTimeout  = 60 * time.Second
)

// ScrapeResult is everything one pagination pass produced.
type ScrapeResult struct {
	Records     []models.RatingRecord
	ResultCount int
	PageBudget  int
	Pages       int
	// Exhausted is true when the next-page control ran out after the
	// results the site announced were covered.
	Exhausted bool
}

// Scraper walks the 2GIS search results for residential complexes.
type Scraper struct {
	cfg          *config.Config
	logger       *utils.Logger
	snapshotPath string
}

// New creates a ready-to-use 2GIS Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{cfg: cfg, logger: logger, snapshotPath: cfg.MarkupSnapshotPath}
}

// SearchURL is the results page for the configured city and search term.
func (s *Scraper) SearchURL() string {
	return fmt.Sprintf("%s/%s/search/%s?m", s.cfg.TwoGISBase,
		url.PathEscape(s.cfg.TwoGISCity), url.PathEscape(s.cfg.TwoGISSearch))
}

// Scrape opens a browser session, loads the search page and paginates it.
// Failing to start the browser or to load the first page is returned as a
// plain error with a nil result.
func (s *Scraper) Scrape(ctx context.Context) (*ScrapeResult, error) {
	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[twogis] Using browser binary: %s", chromeBin)

	allocCtx, cancelAlloc := newAllocator(ctx, chromeBin, s.cfg.Headless)
	defer cancelAlloc()

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	// start the browser on the tab context so later timeouts do not kill it
	if err := chromedp.Run(tabCtx); err != nil {
		return nil, fmt.Errorf("twogis: start browser: %w", err)
	}

	searchURL := s.SearchURL()
	s.logger.Info("[twogis] Loading %s", searchURL)

	loadCtx, cancelLoad := context.WithTimeout(tabCtx, loadTimeout)
	err := chromedp.Run(loadCtx, chromedp.Navigate(searchURL))
	cancelLoad()
	if err != nil {
		return nil, fmt.Errorf("twogis: load %s: %w", searchURL, err)
	}

	page := &chromePage{
		tabCtx:       tabCtx,
		implicitWait: implicitWait,
		scrollPause:  scrollPause,
		clickPause:   clickPause,
	}
	return s.Paginate(ctx, page)
}

// Paginate reads the result count, then for each page parses the cards and
// moves on with page.Next. Records accumulate in memory; nothing is written
// until the caller gets the result.
func (s *Scraper) Paginate(ctx context.Context, page Page) (*ScrapeResult, error) {
	countText, err := page.ResultCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("twogis: %w", err)
	}
	count, err := ParseResultCount(countText)
	if err != nil {
		return nil, err
	}

	result := &ScrapeResult{ResultCount: count, PageBudget: PageBudget(count)}
	s.logger.Info("[twogis] %d results, walking up to %d pages", count, result.PageBudget)

	for n := 1; n <= result.PageBudget; n++ {
		html, err := page.HTML(ctx)
		if err != nil {
			return result, fmt.Errorf("%w at page %d: %v", ErrPaginationAborted, n, err)
		}
		s.saveSnapshot(html)

		records, err := ParseCards(html)
		if err != nil {
			return result, fmt.Errorf("%w at page %d: %v", ErrPaginationAborted, n, err)
		}
		result.Records = append(result.Records, records...)
		result.Pages = n
		s.logger.Info("[twogis] Finished page %d (%d cards, %d total)", n, len(records), len(result.Records))

		if n == result.PageBudget {
			break
		}
		if err := page.Next(ctx); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			if n >= expectedPages(count) {
				s.logger.Info("[twogis] No next page after page %d, results exhausted", n)
				result.Exhausted = true
				return result, nil
			}
			return result, fmt.Errorf("%w after page %d: %v", ErrPaginationAborted, n, err)
		}
	}

	return result, nil
}

// saveSnapshot overwrites the markup file with the current page, for selector debugging.
func (s *Scraper) saveSnapshot(html string) {
	if s.snapshotPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0755); err != nil {
		s.logger.Warn("[twogis] snapshot dir: %v", err)
		return
	}
	if err := os.WriteFile(s.snapshotPath, []byte(html), 0644); err != nil {
		s.logger.Warn("[twogis] snapshot: %v", err)
	}
}
