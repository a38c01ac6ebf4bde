// Package crawler implements the depth-bounded, same-domain crawl pipeline:
// fetching pages, extracting readable text, selecting follow-up links, and
// recording results per job.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher performs HTTP GET requests for crawl targets. Only a 200 response
// yields a body; every other status is an error for the caller to absorb.
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
}

// NewFetcher creates a fetcher with the given politeness identity and limits.
func NewFetcher(userAgent string, timeout time.Duration, maxBodySize int64) *Fetcher {
	return &Fetcher{
		httpClient:  &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
	}
}

// Fetch retrieves the page at the given URL.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %w", reqErr)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, doErr := f.httpClient.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("http fetch: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	limited := io.LimitReader(resp.Body, f.maxBodySize)

	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return nil, fmt.Errorf("read response body: %w", readErr)
	}

	return body, nil
}
