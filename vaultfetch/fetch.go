// Package vaultfetch fetches a remote .kdbx file over plain HTTP(S), trying
// a primary URL and then an ordered list of backup URLs until one succeeds.
package vaultfetch

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher fetches database files over HTTP(S).
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher using a default client with a generous
// timeout, suitable for downloading a multi-megabyte database file.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 5 * time.Minute}}
}

// NewFetcherFromClient returns a Fetcher that uses the provided *http.Client
// directly. Intended for testing: callers can pass an *httptest.Server's
// client to route requests to a local test server.
func NewFetcherFromClient(c *http.Client) *Fetcher {
	return &Fetcher{client: c}
}

// Fetch performs an HTTP GET of url and returns the raw response body.
func (f *Fetcher) Fetch(url string) ([]byte, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("vaultfetch: GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vaultfetch: GET %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vaultfetch: read body %s: %w", url, err)
	}
	return data, nil
}

// FetchWithFallback tries primary first, then each of backups in order,
// returning the first successful response body. If every URL fails, the
// errors from all attempts are joined into a single returned error.
func (f *Fetcher) FetchWithFallback(primary string, backups []string) ([]byte, error) {
	urls := collectURLs(primary, backups)
	if len(urls) == 0 {
		return nil, fmt.Errorf("vaultfetch: no URL supplied")
	}

	var errs []string
	for _, url := range urls {
		data, err := f.Fetch(url)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("vaultfetch: all URLs failed: %s", strings.Join(errs, "; "))
}

// collectURLs merges the single primary URL with the slice of backup URLs,
// deduplicating while preserving order.
func collectURLs(primary string, backups []string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u != "" && !seen[u] {
			seen[u] = true
			result = append(result, u)
		}
	}
	add(primary)
	for _, u := range backups {
		add(u)
	}
	return result
}
