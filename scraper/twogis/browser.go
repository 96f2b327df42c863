package twogis

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"listings-analytics/utils"
)

// Page is the part of a browser tab the pagination loop needs.
type Page interface {
	// ResultCount returns the raw text of the result counter.
	ResultCount(ctx context.Context) (string, error)
	// HTML returns the currently rendered document.
	HTML(ctx context.Context) (string, error)
	// Next moves to the following results page.
	Next(ctx context.Context) error
}

// chromePage drives one chromedp tab.
type chromePage struct {
	tabCtx       context.Context
	implicitWait time.Duration
	scrollPause  time.Duration
	clickPause   time.Duration
}

func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	// every lookup is bounded so a missing element fails instead of hanging
	runCtx, cancel := context.WithTimeout(p.tabCtx, p.implicitWait)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) ResultCount(ctx context.Context) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.Text(resultCountXPath, &text, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("read result count: %w", err)
	}
	return text, nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page markup: %w", err)
	}
	return html, nil
}

func (p *chromePage) Next(ctx context.Context) error {
	if err := p.run(ctx, chromedp.ScrollIntoView(scrollAnchorXPath, chromedp.BySearch)); err != nil {
		return fmt.Errorf("scroll results: %w", err)
	}
	if err := utils.Sleep(ctx, p.scrollPause); err != nil {
		return err
	}
	if err := p.run(ctx, chromedp.Click(nextPageXPath, chromedp.BySearch)); err != nil {
		return fmt.Errorf("click next page: %w", err)
	}
	return utils.Sleep(ctx, p.clickPause)
}

// newAllocator creates a Chrome exec allocator context.
func newAllocator(parent context.Context, chromeBin string, headless bool) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1440, 900),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}
	return chromedp.NewExecAllocator(parent, opts...)
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
