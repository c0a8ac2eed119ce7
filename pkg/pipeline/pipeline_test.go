// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/webrecap/webrecap/pkg/aiprovider"
	"github.com/webrecap/webrecap/pkg/fetcher"
	"github.com/webrecap/webrecap/pkg/websearch"
)

type fakeSearch struct {
	results []websearch.SearchResult
	err     error
}

func (f *fakeSearch) Search(_ context.Context, query string, maxResults int) ([]websearch.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > maxResults {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}

type fakeAI struct {
	calls   int
	failOn  func(call int) error
	replies func(call int, text string) string
}

func (f *fakeAI) Summarize(_ context.Context, text, _ string) (string, error) {
	f.calls++
	if f.failOn != nil {
		if err := f.failOn(f.calls); err != nil {
			return "", err
		}
	}
	if f.replies != nil {
		return f.replies(f.calls, text), nil
	}
	return fmt.Sprintf("summary %d", f.calls), nil
}

type fakeStore struct {
	saved []*Result
	err   error
}

func (f *fakeStore) SaveRun(_ context.Context, result *Result) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, result)
	return nil
}

// newPageServer serves a small article under /page/N and 404s everything else.
func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/page/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><p>Body of %s with enough words to summarize.</p></body></html>", r.URL.Path)
	}))
}

func searchResultsFor(server *httptest.Server, paths ...string) []websearch.SearchResult {
	var out []websearch.SearchResult
	for i, p := range paths {
		out = append(out, websearch.SearchResult{
			Title:   fmt.Sprintf("Result %d", i+1),
			URL:     server.URL + p,
			Snippet: "snippet",
		})
	}
	return out
}

func TestRun_HappyPath(t *testing.T) {
	server := newPageServer(t)
	defer server.Close()

	search := &fakeSearch{results: searchResultsFor(server, "/page/1", "/page/2", "/page/3")}
	ai := &fakeAI{}
	o := New(search, ai, fetcher.New(fetcher.Options{}))

	result, err := o.Run(context.Background(), Params{Query: "AI in healthcare", MaxResults: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Query != "AI in healthcare" {
		t.Errorf("Query = %q", result.Query)
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(result.Results))
	}
	for i, rec := range result.Results {
		if rec.URL != search.results[i].URL {
			t.Errorf("result %d URL = %q, want %q (order preserved, drawn from search set)", i, rec.URL, search.results[i].URL)
		}
		if rec.Summary == "" {
			t.Errorf("result %d has empty summary", i)
		}
	}
	if result.OverallSummary == "" {
		t.Error("expected non-empty overall summary")
	}
	// One call per page plus the aggregate call.
	if ai.calls != 4 {
		t.Errorf("expected 4 AI calls, got %d", ai.calls)
	}
}

func TestRun_MaxURLsBound(t *testing.T) {
	server := newPageServer(t)
	defer server.Close()

	var paths []string
	for i := 0; i < 12; i++ {
		paths = append(paths, fmt.Sprintf("/page/%d", i))
	}
	search := &fakeSearch{results: searchResultsFor(server, paths...)}
	o := New(search, &fakeAI{}, fetcher.New(fetcher.Options{}))

	// max_results=5 with max_urls=8: bounded by the 5 search results.
	result, err := o.Run(context.Background(), Params{Query: "q", MaxResults: 5, MaxURLs: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) > 8 {
		t.Errorf("len(Results) = %d, exceeds max_urls 8", len(result.Results))
	}
	if len(result.Results) != 5 {
		t.Errorf("len(Results) = %d, want 5 (bounded by search results)", len(result.Results))
	}

	// max_urls below the search result count caps fetching.
	result, err = o.Run(context.Background(), Params{Query: "q", MaxResults: 10, MaxURLs: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 2 {
		t.Errorf("len(Results) = %d, want 2", len(result.Results))
	}
}

func TestRun_AllFetchesFail(t *testing.T) {
	server := newPageServer(t)
	defer server.Close()

	search := &fakeSearch{results: searchResultsFor(server, "/missing/1", "/missing/2")}
	ai := &fakeAI{}
	o := New(search, ai, fetcher.New(fetcher.Options{}))

	result, err := o.Run(context.Background(), Params{Query: "q"})
	if err != nil {
		t.Fatalf("expected best-effort nil error, got %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(result.Results))
	}
	if result.Results == nil {
		t.Error("Results must be an empty slice, not nil, for stable JSON output")
	}
	if result.OverallSummary != "" {
		t.Errorf("expected empty overall summary, got %q", result.OverallSummary)
	}
	if ai.calls != 0 {
		t.Errorf("expected no AI calls, got %d", ai.calls)
	}
}

func TestRun_PerPageAIFailureDropsPage(t *testing.T) {
	server := newPageServer(t)
	defer server.Close()

	search := &fakeSearch{results: searchResultsFor(server, "/page/1", "/page/2")}
	ai := &fakeAI{failOn: func(call int) error {
		if call == 1 {
			return &aiprovider.APIError{Provider: "gemini", StatusCode: 429, Message: "rate limited"}
		}
		return nil
	}}
	o := New(search, ai, fetcher.New(fetcher.Options{}))

	result, err := o.Run(context.Background(), Params{Query: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("expected 1 summary after dropping the failed page, got %d", len(result.Results))
	}
	if result.Results[0].URL != search.results[1].URL {
		t.Errorf("surviving record URL = %q, want %q", result.Results[0].URL, search.results[1].URL)
	}
	if result.OverallSummary == "" {
		t.Error("expected overall summary despite one dropped page")
	}
}

func TestRun_AllPageSummariesFail(t *testing.T) {
	server := newPageServer(t)
	defer server.Close()

	search := &fakeSearch{results: searchResultsFor(server, "/page/1", "/page/2")}
	ai := &fakeAI{failOn: func(int) error {
		return &aiprovider.APIError{Provider: "gemini", StatusCode: 500, Message: "boom"}
	}}
	o := New(search, ai, fetcher.New(fetcher.Options{}))

	result, err := o.Run(context.Background(), Params{Query: "q"})
	if err != nil {
		t.Fatalf("expected best-effort nil error, got %v", err)
	}
	if len(result.Results) != 0 || result.OverallSummary != "" {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestRun_OverallSummaryFailureSurfaces(t *testing.T) {
	server := newPageServer(t)
	defer server.Close()

	search := &fakeSearch{results: searchResultsFor(server, "/page/1")}
	ai := &fakeAI{failOn: func(call int) error {
		if call == 2 { // the aggregate call
			return &aiprovider.APIError{Provider: "gemini", StatusCode: 503, Message: "unavailable"}
		}
		return nil
	}}
	o := New(search, ai, fetcher.New(fetcher.Options{}))

	_, err := o.Run(context.Background(), Params{Query: "q"})
	var apiErr *aiprovider.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *aiprovider.APIError, got %v", err)
	}
	if apiErr.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
}

func TestRun_SearchFailureAborts(t *testing.T) {
	searchErr := &websearch.APIError{Provider: "serper", StatusCode: 429, Message: "quota"}
	o := New(&fakeSearch{err: searchErr}, &fakeAI{}, fetcher.New(fetcher.Options{}))

	_, err := o.Run(context.Background(), Params{Query: "q"})
	var apiErr *websearch.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *websearch.APIError, got %v", err)
	}
}

func TestRun_EmptyQuery(t *testing.T) {
	o := New(&fakeSearch{}, &fakeAI{}, fetcher.New(fetcher.Options{}))
	if _, err := o.Run(context.Background(), Params{Query: "  "}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestRun_SaveRun(t *testing.T) {
	server := newPageServer(t)
	defer server.Close()

	search := &fakeSearch{results: searchResultsFor(server, "/page/1")}
	store := &fakeStore{}
	o := New(search, &fakeAI{}, fetcher.New(fetcher.Options{}), WithStore(store))

	result, err := o.Run(context.Background(), Params{Query: "q", SaveRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.saved) != 1 || store.saved[0] != result {
		t.Errorf("expected the result to be saved once, got %d saves", len(store.saved))
	}

	// Without SaveRun nothing is persisted.
	if _, err := o.Run(context.Background(), Params{Query: "q"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("expected no additional saves, got %d", len(store.saved))
	}
}

func TestRun_SaveFailureDoesNotFailRun(t *testing.T) {
	server := newPageServer(t)
	defer server.Close()

	search := &fakeSearch{results: searchResultsFor(server, "/page/1")}
	o := New(search, &fakeAI{}, fetcher.New(fetcher.Options{}), WithStore(&fakeStore{err: errors.New("disk full")}))

	result, err := o.Run(context.Background(), Params{Query: "q", SaveRun: true})
	if err != nil {
		t.Fatalf("save failure must not fail the run: %v", err)
	}
	if result.OverallSummary == "" {
		t.Error("expected a complete result despite the save failure")
	}
}

func TestResult_JSONRoundTrip(t *testing.T) {
	orig := &Result{
		Query: "AI in healthcare",
		Results: []SummaryRecord{
			{URL: "https://example.com/a", Summary: "first"},
			{URL: "https://example.com/b", Summary: "second"},
		},
		OverallSummary: "both sources agree",
	}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		t.Fatalf("unmarshal keys: %v", err)
	}
	for _, k := range []string{"query", "results", "overall_summary"} {
		if _, ok := keys[k]; !ok {
			t.Errorf("serialized result missing key %q", k)
		}
	}

	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(*orig, back) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", back, *orig)
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("hello", 10); got != "hello" {
		t.Errorf("no-op truncate = %q", got)
	}
	if got := truncateText("hello", 0); got != "hello" {
		t.Errorf("max 0 must mean no limit, got %q", got)
	}
	if got := truncateText("hello world", 5); got != "hello" {
		t.Errorf("truncate = %q, want 'hello'", got)
	}
	// Never split a multi-byte rune.
	s := "aé" // 'é' is 2 bytes starting at offset 1
	if got := truncateText(s, 2); got != "a" {
		t.Errorf("rune-safe truncate = %q, want 'a'", got)
	}
}
