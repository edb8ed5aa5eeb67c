package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"disclosure-feed/internal/usecase/disclosure"
)

// listPathFormat is the listing page path; page is zero-padded to three digits.
const listPathFormat = "/inbs/I_list_%03d_%s.html"

// ListFetcher implements disclosure.PageFetcher against the TDnet listing.
// It issues exactly one GET per call; there is no retry.
type ListFetcher struct {
	client      *http.Client
	baseURL     string
	userAgent   string
	maxBodySize int64
}

// NewListFetcher creates a ListFetcher with its own client bounded by cfg.Timeout.
func NewListFetcher(cfg Config) *ListFetcher {
	return NewListFetcherWithClient(&http.Client{Timeout: cfg.Timeout}, cfg)
}

// NewListFetcherWithClient creates a ListFetcher that sends requests through client.
func NewListFetcherWithClient(client *http.Client, cfg Config) *ListFetcher {
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultConfig().MaxBodySize
	}
	return &ListFetcher{
		client:      client,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		maxBodySize: maxBody,
	}
}

// PageURL returns the listing URL for page on date, e.g.
// https://www.release.tdnet.info/inbs/I_list_001_20250611.html.
func (f *ListFetcher) PageURL(page int, date string) string {
	return f.baseURL + fmt.Sprintf(listPathFormat, page, date)
}

// FetchPage retrieves one listing page.
// 404 is reported as StatusNotFound with a nil error; every other failure is
// StatusError with the cause.
func (f *ListFetcher) FetchPage(ctx context.Context, page int, date string) ([]byte, disclosure.PageStatus, error) {
	pageURL := f.PageURL(page, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, disclosure.StatusError, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, disclosure.StatusError, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, disclosure.StatusNotFound, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, disclosure.StatusError, &HTTPStatusError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	// Read one byte past the limit to tell a full page from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, disclosure.StatusError, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, disclosure.StatusError, fmt.Errorf("%s: %w", pageURL, ErrBodyTooLarge)
	}

	return body, disclosure.StatusOK, nil
}
