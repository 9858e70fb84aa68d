// Package collegedunia implements the CollegeDunia listing source: page
// fetchers (plain HTTP and headless browser) and a parser for the listing
// table markup.
package collegedunia

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"collegedunia-scraper/collector"
	"collegedunia-scraper/utils"
)

// headerSets are the request identities rotated between sessions so the
// scraper does not present a single static fingerprint.
var headerSets = []map[string]string{
	{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		"Accept-Language": "en-US,en;q=0.9",
	},
	{
		"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/119.0 Safari/537.36",
		"Accept-Language": "en-US,en;q=0.9",
	},
}

// HTTPFetcher fetches listing pages over plain HTTP. It performs no retries:
// the collector recovers from failures by continuing to the next page.
type HTTPFetcher struct {
	listingURL string
	client     *http.Client
	headers    map[string]string
	logger     *utils.Logger
}

// NewHTTPFetcher creates a fetcher for the given listing URL. One header set
// is picked per fetcher, mimicking a browser session.
func NewHTTPFetcher(listingURL string, timeout time.Duration, logger *utils.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		listingURL: listingURL,
		client:     &http.Client{Timeout: timeout},
		headers:    headerSets[rand.Intn(len(headerSets))],
		logger:     logger,
	}
}

// Fetch retrieves one listing page. Page 1 is the bare listing URL; later
// pages add a ?page=N query parameter.
func (f *HTTPFetcher) Fetch(ctx context.Context, page int) collector.FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.listingURL, nil)
	if err != nil {
		f.logger.Error("[collegedunia] Build request for page %d: %v", page, err)
		return collector.FetchResult{Kind: collector.FetchConnError}
	}
	if page > 1 {
		q := req.URL.Query()
		q.Set("page", strconv.Itoa(page))
		req.URL.RawQuery = q.Encode()
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return collector.FetchResult{Kind: classifyFetchError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return collector.FetchResult{Kind: collector.FetchBadStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return collector.FetchResult{Kind: classifyFetchError(err)}
	}
	return collector.FetchResult{Kind: collector.FetchOK, Content: body}
}

func classifyFetchError(err error) collector.FetchKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return collector.FetchTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return collector.FetchTimeout
	}
	return collector.FetchConnError
}
