// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

// Package runstoretest provides a shared conformance test suite for
// runstore.Store implementations. Each backend should call
// RunConformanceTests from its own _test.go file.
package runstoretest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/webrecap/webrecap/pkg/pipeline"
	"github.com/webrecap/webrecap/pkg/runstore"
)

func sampleResult(query string) *pipeline.Result {
	return &pipeline.Result{
		Query: query,
		Results: []pipeline.SummaryRecord{
			{URL: "https://example.com/a", Summary: "summary a"},
			{URL: "https://example.com/b", Summary: "summary b"},
		},
		OverallSummary: "combined summary",
	}
}

// RunConformanceTests exercises a Store implementation against the shared
// contract. The newStore function is called once per sub-test to provide an
// isolated store instance.
func RunConformanceTests(t *testing.T, newStore func(t *testing.T) runstore.Store) {
	t.Helper()

	t.Run("SaveAndList", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		want := sampleResult("AI in healthcare")
		if err := store.SaveRun(ctx, want); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}

		runs, err := store.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		run := runs[0]
		if run.ID == "" {
			t.Error("expected a generated run id")
		}
		if run.CreatedAt.IsZero() {
			t.Error("expected a creation timestamp")
		}
		if run.Result == nil || run.Result.Query != want.Query ||
			run.Result.OverallSummary != want.OverallSummary ||
			len(run.Result.Results) != len(want.Results) {
			t.Errorf("stored result mismatch: %+v", run.Result)
		}
		for i := range want.Results {
			if run.Result.Results[i] != want.Results[i] {
				t.Errorf("record %d = %+v, want %+v", i, run.Result.Results[i], want.Results[i])
			}
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		if err := store.SaveRun(ctx, sampleResult("q")); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		runs, err := store.ListRuns(ctx, 1)
		if err != nil || len(runs) != 1 {
			t.Fatalf("ListRuns: %v (%d runs)", err, len(runs))
		}

		got, err := store.GetRun(ctx, runs[0].ID)
		if err != nil {
			t.Fatalf("GetRun: %v", err)
		}
		if got.ID != runs[0].ID || got.Result.Query != "q" {
			t.Errorf("GetRun returned %+v", got)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())

		_, err := store.GetRun(context.Background(), "run_does_not_exist")
		if !errors.Is(err, runstore.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("ListNewestFirstWithLimit", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			if err := store.SaveRun(ctx, sampleResult(fmt.Sprintf("query %d", i))); err != nil {
				t.Fatalf("SaveRun %d: %v", i, err)
			}
		}

		runs, err := store.ListRuns(ctx, 3)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs with limit, got %d", len(runs))
		}
		for i := 1; i < len(runs); i++ {
			if runs[i].CreatedAt.After(runs[i-1].CreatedAt) {
				t.Errorf("runs not newest first: %v before %v", runs[i-1].CreatedAt, runs[i].CreatedAt)
			}
		}
	})

	t.Run("EmptyList", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())

		runs, err := store.ListRuns(context.Background(), 10)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})
}
