// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

// Package fetcher retrieves web pages over HTTP and extracts their readable
// text. Fetch failures are recorded on the returned PageContent rather than
// returned as errors; the pipeline skips failed pages when summarizing.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds one page retrieval end to end.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 5 << 20

	defaultUserAgent = "webrecap/1.0 (+https://github.com/webrecap/webrecap)"
)

// PageContent holds the outcome of fetching one URL. When FetchError is
// non-empty, Text is empty and the page must be skipped.
type PageContent struct {
	URL        string `json:"url"`
	Text       string `json:"text"`
	FetchError string `json:"fetch_error,omitempty"`
}

// Options configures a Fetcher. Zero values take the package defaults.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// Fetcher retrieves pages with a bounded timeout and body size. It performs
// no retries; redirect handling is the net/http default.
type Fetcher struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{
		httpClient:   &http.Client{Timeout: opts.Timeout},
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Fetch retrieves one URL and extracts its readable text. Timeouts, non-200
// statuses, unsupported content types and extraction failures set
// FetchError; Fetch itself never fails.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) PageContent {
	page := PageContent{URL: rawURL}

	parsedURL, err := url.Parse(rawURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		page.FetchError = fmt.Sprintf("invalid url %q", rawURL)
		return page
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		page.FetchError = fmt.Sprintf("create request: %v", err)
		return page
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		page.FetchError = fmt.Sprintf("fetch failed: %v", err)
		return page
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		page.FetchError = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return page
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		// Servers routinely send junk here; try HTML as the common case.
		mediaType = "text/html"
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		page.FetchError = fmt.Sprintf("read body: %v", err)
		return page
	}

	text, err := extractReadable(mediaType, body, parsedURL)
	if err != nil {
		page.FetchError = err.Error()
		return page
	}

	page.Text = text
	return page
}
