// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/webrecap/webrecap/pkg/pipeline"
	"github.com/webrecap/webrecap/pkg/runstore"
)

func init() {
	runstore.Providers.Register("sqlite", func(_ context.Context, params map[string]string) (runstore.Store, error) {
		path := params["path"]
		if path == "" {
			path = "webrecap.db"
		}
		return New(path)
	})
}

// compile-time check
var _ runstore.Store = (*Store)(nil)

// Store is a SQLite-backed run store. The full result document is stored
// as JSON next to the queryable columns.
type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the SQLite database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("sqlite create tables: %w", err)
	}
	return nil
}

// SaveRun inserts the result under a fresh run id.
func (s *Store) SaveRun(ctx context.Context, result *pipeline.Result) error {
	run := runstore.NewRun(result)

	doc, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, result, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Result.Query, string(doc), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite insert run: %w", err)
	}
	return nil
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(ctx context.Context, id string) (*runstore.Run, error) {
	run := &runstore.Run{ID: id}
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT result, created_at FROM runs WHERE id = ?`, id).
		Scan(&doc, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, runstore.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite select run: %w", err)
	}

	if err := json.Unmarshal([]byte(doc), &run.Result); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*runstore.Run, error) {
	q := `SELECT id, result, created_at FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite list runs: %w", err)
	}
	defer rows.Close()

	var runs []*runstore.Run
	for rows.Next() {
		run := &runstore.Run{}
		var doc string
		if err := rows.Scan(&run.ID, &doc, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(doc), &run.Result); err != nil {
			return nil, fmt.Errorf("parse run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
