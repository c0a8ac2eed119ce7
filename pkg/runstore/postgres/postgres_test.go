// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package postgres_test

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/webrecap/webrecap/pkg/runstore"
	"github.com/webrecap/webrecap/pkg/runstore/postgres"
	"github.com/webrecap/webrecap/pkg/runstore/runstoretest"
)

func TestPostgresConformance(t *testing.T) {
	dsn := os.Getenv("RUN_STORE_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL conformance tests: RUN_STORE_POSTGRES_DSN must be set")
	}

	runstoretest.RunConformanceTests(t, func(t *testing.T) runstore.Store {
		store, err := postgres.New(dsn)
		if err != nil {
			t.Fatalf("postgres.New: %v", err)
		}
		// Sub-tests share one database; start each from a clean table.
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			t.Fatalf("open for truncate: %v", err)
		}
		defer db.Close()
		if _, err := db.Exec("TRUNCATE runs"); err != nil {
			t.Fatalf("truncate runs: %v", err)
		}
		return store
	})
}
