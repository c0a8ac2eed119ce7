// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

// Package runstore defines pluggable persistence for finished pipeline
// runs. Backends self-register with the Providers registry; blank-import an
// implementation package to activate it:
//
//	import _ "github.com/webrecap/webrecap/pkg/runstore/memory"
//	import _ "github.com/webrecap/webrecap/pkg/runstore/filesystem"
//	import _ "github.com/webrecap/webrecap/pkg/runstore/sqlite"
//	import _ "github.com/webrecap/webrecap/pkg/runstore/postgres"
//	import _ "github.com/webrecap/webrecap/pkg/runstore/s3"
package runstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/webrecap/webrecap/pkg/pipeline"
	"github.com/webrecap/webrecap/pkg/provider"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// Providers is the registry of run store backend implementations.
var Providers = provider.NewRegistry[Store]("run_store")

// Run is one persisted pipeline result with storage identity.
type Run struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Result    *pipeline.Result `json:"result"`
}

// Store persists and retrieves pipeline runs. SaveRun satisfies
// pipeline.Store, so any backend can be attached to an Orchestrator.
type Store interface {
	SaveRun(ctx context.Context, result *pipeline.Result) error
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns runs newest first, at most limit entries
	// (limit <= 0 means no limit).
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Close(ctx context.Context) error
}

// NewRun wraps a pipeline result with a fresh storage identity.
func NewRun(result *pipeline.Result) *Run {
	return &Run{
		ID:        "run_" + uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Result:    result,
	}
}
