// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const serperEndpoint = "https://google.serper.dev/search"

func init() {
	Providers.Register("serper", func(_ context.Context, params map[string]string) (Provider, error) {
		apiKey := params["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("serper: api_key parameter is required")
		}
		return NewSerperProvider(apiKey), nil
	})
}

// SerperProvider performs Google web searches using the Serper API.
type SerperProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewSerperProvider creates a new Serper search provider.
func NewSerperProvider(apiKey string) *SerperProvider {
	return &SerperProvider{
		apiKey:     apiKey,
		endpoint:   serperEndpoint,
		httpClient: &http.Client{},
	}
}

// Search queries the Serper API and returns the organic results.
func (s *SerperProvider) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	reqBody := serperSearchRequest{
		Query: query,
		Num:   maxResults,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Provider: "serper", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: "serper", StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var result serperSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var results []SearchResult
	for _, r := range result.Organic {
		if len(results) >= maxResults {
			break
		}
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
		})
	}

	return results, nil
}

type serperSearchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperSearchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}
