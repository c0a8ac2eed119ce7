// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/webrecap/webrecap/pkg/pipeline"
	"github.com/webrecap/webrecap/pkg/runstore"
)

func init() {
	runstore.Providers.Register("filesystem", func(_ context.Context, params map[string]string) (runstore.Store, error) {
		return New(params["base_dir"])
	})
}

// compile-time check
var _ runstore.Store = (*Store)(nil)

// Store persists runs as one JSON document per run.
//
// Layout:
//
//	<baseDir>/<run_id>.json
type Store struct {
	baseDir string
}

// New creates a filesystem-backed Store, creating baseDir if it does not
// exist.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		baseDir = "webrecap-runs"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

// SaveRun writes the run document atomically (temp file + rename).
func (s *Store) SaveRun(_ context.Context, result *pipeline.Result) error {
	run := runstore.NewRun(result)

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	path := s.runPath(run.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename run: %w", err)
	}
	return nil
}

// GetRun reads one run document.
func (s *Store) GetRun(_ context.Context, id string) (*runstore.Run, error) {
	data, err := os.ReadFile(s.runPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s: %w", id, runstore.ErrRunNotFound)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}

	var run runstore.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns reads all run documents and returns them newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*runstore.Run, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read base dir: %w", err)
	}

	var runs []*runstore.Run
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		run, err := s.GetRun(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			// Skip partially written or foreign files.
			continue
		}
		runs = append(runs, run)
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

func (s *Store) runPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}
