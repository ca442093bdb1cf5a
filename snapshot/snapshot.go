// Package snapshot captures the served dashboard in a headless browser.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/aluiziolira/go-nyc-airbnb/analysis"
	"github.com/aluiziolira/go-nyc-airbnb/dashboard"
	"github.com/chromedp/chromedp"
)

const (
	defaultWidth   = 1280
	defaultHeight  = 900
	defaultTimeout = 60 * time.Second
)

// Options describes one capture.
type Options struct {
	URL     string
	Region  string
	Width   int
	Height  int
	Timeout time.Duration
}

// Validate checks the target and fills in defaults.
func (o *Options) Validate() error {
	if o.URL == "" {
		return fmt.Errorf("snapshot url cannot be empty")
	}
	u, err := url.Parse(o.URL)
	if err != nil {
		return fmt.Errorf("parse snapshot url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("snapshot url must be an absolute http(s) url")
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("snapshot size must be positive")
	}
	if o.Width == 0 {
		o.Width = defaultWidth
	}
	if o.Height == 0 {
		o.Height = defaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Region == "" {
		o.Region = analysis.AnyRegion
	}
	return nil
}

// Capture loads the dashboard, optionally selects a region and returns a
// full-page PNG.
func Capture(ctx context.Context, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var image []byte
	start := time.Now()
	if err := chromedp.Run(runCtx, tasks(opts, &image)); err != nil {
		return nil, fmt.Errorf("capture %s: %w", opts.URL, err)
	}
	slog.Info("snapshot captured",
		slog.String("url", opts.URL),
		slog.String("region", opts.Region),
		slog.Int("bytes", len(image)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return image, nil
}

// tasks waits for the interactive chart to draw, switches region when one
// other than the default is requested, then screenshots the page.
func tasks(opts Options, image *[]byte) chromedp.Tasks {
	slot := "#" + dashboard.InteractiveID
	t := chromedp.Tasks{
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(slot+`[data-rendered="true"]`, chromedp.ByQuery),
	}
	if opts.Region != analysis.AnyRegion {
		selector := "#" + dashboard.SelectorID
		t = append(t,
			chromedp.SetValue(selector, opts.Region, chromedp.ByQuery),
			chromedp.Evaluate(`document.querySelector(`+strconv.Quote(selector)+`).dispatchEvent(new Event('change'))`, nil),
			chromedp.WaitVisible(slot+`[data-region=`+strconv.Quote(opts.Region)+`]`, chromedp.ByQuery),
		)
	}
	return append(t, chromedp.FullScreenshot(image, 100))
}
