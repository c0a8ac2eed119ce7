// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline sequences one scrape-and-summarize run: search the web,
// fetch the resulting pages, summarize each page, then produce an overall
// summary. Runs are best-effort: individual page failures are skipped, and
// a run that yields no usable pages returns an empty result rather than an
// error.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/webrecap/webrecap/pkg/aiprovider"
	"github.com/webrecap/webrecap/pkg/fetcher"
	"github.com/webrecap/webrecap/pkg/observability/logging"
	"github.com/webrecap/webrecap/pkg/websearch"
)

// DefaultMaxResults is the search result count requested when Params does
// not set one.
const DefaultMaxResults = 5

const pageInstructions = "Summarize the following web page content in a few concise sentences. " +
	"Focus on the substance of the page and ignore navigation text, cookie notices and boilerplate."

const overallInstructionsFmt = "The texts below are summaries of web pages found for the search query %q. " +
	"Combine them into one cohesive overall summary of what the sources say."

// SummaryRecord is the summary of one successfully fetched page.
type SummaryRecord struct {
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// Result is the terminal artifact of one pipeline run. It has no identity
// beyond the run that produced it and serializes cleanly to JSON.
type Result struct {
	Query          string          `json:"query"`
	Results        []SummaryRecord `json:"results"`
	OverallSummary string          `json:"overall_summary"`
}

// Params configures one run. Zero values take defaults: MaxResults
// DefaultMaxResults, MaxURLs the effective MaxResults.
type Params struct {
	Query      string
	MaxResults int
	MaxURLs    int
	SaveRun    bool
}

// Store persists finished runs. Implementations live in pkg/runstore.
type Store interface {
	SaveRun(ctx context.Context, result *Result) error
}

// Orchestrator composes a search provider, a page fetcher and an AI client
// into the sequential run pipeline. It holds no per-run state; Run is
// re-entrant.
type Orchestrator struct {
	search        websearch.Provider
	ai            aiprovider.Client
	fetcher       *fetcher.Fetcher
	store         Store
	logger        *logging.Logger
	maxInputChars int
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithStore attaches a run store; runs with Params.SaveRun set are
// persisted to it.
func WithStore(s Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithLogger replaces the default no-op logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMaxInputChars caps how many characters of page text are sent to the
// AI backend per page.
func WithMaxInputChars(n int) Option {
	return func(o *Orchestrator) { o.maxInputChars = n }
}

// New creates an Orchestrator.
func New(search websearch.Provider, ai aiprovider.Client, f *fetcher.Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		search:        search,
		ai:            ai,
		fetcher:       f,
		logger:        logging.NewNop(),
		maxInputChars: DefaultMaxInputChars,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one search → fetch → summarize → aggregate pass.
//
// A search failure aborts the run. Fetch failures and per-page
// summarization failures drop the page and continue. A run that ends with
// zero usable pages returns an empty Result and no error; such a run can
// also mean a systemic outage (every URL unreachable), so it is logged at
// warn level. An AI failure on the overall summary is surfaced.
func (o *Orchestrator) Run(ctx context.Context, params Params) (*Result, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, fmt.Errorf("pipeline: query is required")
	}

	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	maxURLs := params.MaxURLs
	if maxURLs <= 0 {
		maxURLs = maxResults
	}

	result := &Result{
		Query:   params.Query,
		Results: []SummaryRecord{},
	}

	searchResults, err := o.search.Search(ctx, params.Query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	o.logger.Debug("search completed", "query", params.Query, "results", len(searchResults))

	if len(searchResults) > maxURLs {
		searchResults = searchResults[:maxURLs]
	}

	for _, sr := range searchResults {
		page := o.fetcher.Fetch(ctx, sr.URL)
		if page.FetchError != "" {
			o.logger.Warn("skipping page", "url", sr.URL, "error", page.FetchError)
			continue
		}

		summary, err := o.ai.Summarize(ctx, truncateText(page.Text, o.maxInputChars), pageInstructions)
		if err != nil {
			o.logger.Warn("dropping page, summarization failed", "url", sr.URL, "error", err)
			continue
		}

		result.Results = append(result.Results, SummaryRecord{
			URL:     page.URL,
			Summary: summary,
		})
	}

	if len(result.Results) == 0 {
		// Possibly every URL failed for the same systemic reason; the empty
		// result is intentional but worth flagging.
		o.logger.Warn("no pages produced a summary, returning empty result",
			"query", params.Query, "search_results", len(searchResults))
		o.persist(ctx, params, result)
		return result, nil
	}

	overall, err := o.ai.Summarize(ctx, combineSummaries(result.Results), fmt.Sprintf(overallInstructionsFmt, params.Query))
	if err != nil {
		return nil, fmt.Errorf("overall summary: %w", err)
	}
	result.OverallSummary = overall

	o.persist(ctx, params, result)
	return result, nil
}

// persist saves the run when a store is attached and requested. A save
// failure does not fail the run.
func (o *Orchestrator) persist(ctx context.Context, params Params, result *Result) {
	if o.store == nil || !params.SaveRun {
		return
	}
	if err := o.store.SaveRun(ctx, result); err != nil {
		o.logger.Error("failed to save run", "query", params.Query, "error", err)
		return
	}
	o.logger.Info("run saved", "query", params.Query, "pages", len(result.Results))
}

// combineSummaries formats the per-page summaries as the input of the
// aggregate call.
func combineSummaries(records []SummaryRecord) string {
	var sb strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&sb, "Source: %s\n%s\n\n", rec.URL, rec.Summary)
	}
	return strings.TrimSpace(sb.String())
}
