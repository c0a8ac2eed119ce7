// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

// Package websearch wraps external web search APIs behind a single
// Provider interface. The built-in backends (serper, tavily, brave)
// self-register with the Providers registry at init time.
package websearch

import (
	"context"
	"fmt"

	"github.com/webrecap/webrecap/pkg/provider"
)

// Providers is the registry of web search backend implementations.
// Recognized params: api_key.
var Providers = provider.NewRegistry[Provider]("web_search")

// SearchResult represents a single web search result.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider performs web searches against an external API. One bounded
// request per call; no pagination.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// APIError reports a failed call to a search backend: a non-2xx response,
// a quota rejection, or a transport failure (StatusCode 0).
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s search returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s search request: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
