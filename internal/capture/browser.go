package capture

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// Options controls the headless browser
type Options struct {
	Width   int64
	Height  int64
	Visible bool // Show browser window (for debugging)
	Timeout time.Duration
}

// FileURL returns the file:// URL for a local page
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Screenshot loads pageURL in headless Chrome and returns a full-page PNG
func Screenshot(ctx context.Context, pageURL string, opts Options) ([]byte, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.Visible),
		chromedp.WindowSize(int(opts.Width), int(opts.Height)),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var png []byte
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(opts.Width, opts.Height),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`div.divGridHolder`, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	); err != nil {
		return nil, fmt.Errorf("capturing %s: %w", pageURL, err)
	}

	return png, nil
}

// ScreenshotFile captures a local HTML file and writes the PNG to out
func ScreenshotFile(ctx context.Context, htmlPath, out string, opts Options) error {
	pageURL, err := FileURL(htmlPath)
	if err != nil {
		return err
	}

	png, err := Screenshot(ctx, pageURL, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, png, 0644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}
	return nil
}
