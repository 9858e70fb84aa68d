package collegedunia

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"collegedunia-scraper/collector"
	"collegedunia-scraper/utils"
)

// BrowserFetcher renders listing pages in headless Chrome. It is the
// fallback for when the source serves the table via client-side rendering
// and plain HTTP fetches come back without it.
type BrowserFetcher struct {
	listingURL string
	timeout    time.Duration
	chromeBin  string
	logger     *utils.Logger
}

// NewBrowserFetcher creates a browser-backed fetcher. chromeBin may be empty
// to probe the usual binary names on PATH.
func NewBrowserFetcher(listingURL string, timeout time.Duration, chromeBin string, logger *utils.Logger) *BrowserFetcher {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[collegedunia] Browser fetcher using binary: %s", chromeBin)
	return &BrowserFetcher{
		listingURL: listingURL,
		timeout:    timeout,
		chromeBin:  chromeBin,
		logger:     logger,
	}
}

// Fetch renders one listing page and returns its final HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, page int) collector.FetchResult {
	pageURL := f.listingURL
	if page > 1 {
		pageURL += "?page=" + strconv.Itoa(page)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if f.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(f.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return collector.FetchResult{Kind: collector.FetchTimeout}
		}
		f.logger.Error("[collegedunia] Browser render of page %d failed: %v", page, err)
		return collector.FetchResult{Kind: collector.FetchConnError}
	}

	return collector.FetchResult{Kind: collector.FetchOK, Content: []byte(html)}
}

// findChromeBinary locates a Chrome/Chromium binary on PATH.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
