// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/webrecap/webrecap/pkg/pipeline"
	"github.com/webrecap/webrecap/pkg/runstore"
)

func init() {
	runstore.Providers.Register("memory", func(_ context.Context, _ map[string]string) (runstore.Store, error) {
		return New(), nil
	})
}

// compile-time check
var _ runstore.Store = (*Store)(nil)

// Store is an in-memory run store.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*runstore.Run
}

// New creates a new in-memory run store.
func New() *Store {
	return &Store{
		runs: make(map[string]*runstore.Run),
	}
}

// SaveRun stores a copy of the result under a fresh run id.
func (s *Store) SaveRun(_ context.Context, result *pipeline.Result) error {
	run := runstore.NewRun(cloneResult(result))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(_ context.Context, id string) (*runstore.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, fmt.Errorf("run %s: %w", id, runstore.ErrRunNotFound)
	}

	cp := *run
	cp.Result = cloneResult(run.Result)
	return &cp, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(_ context.Context, limit int) ([]*runstore.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*runstore.Run, 0, len(s.runs))
	for _, run := range s.runs {
		cp := *run
		cp.Result = cloneResult(run.Result)
		runs = append(runs, &cp)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op.
func (s *Store) Close(_ context.Context) error {
	return nil
}

func cloneResult(r *pipeline.Result) *pipeline.Result {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Results = make([]pipeline.SummaryRecord, len(r.Results))
	copy(cp.Results, r.Results)
	return &cp
}
