// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

// Package aiprovider wraps external LLM summarization APIs behind a single
// Client interface. Four backends are built in: gemini (default), openai,
// openrouter and deepseek. Backends self-register with the Providers
// registry together with their supported model identifiers.
package aiprovider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/webrecap/webrecap/pkg/provider"
)

// DefaultMaxTokens caps the generated summary length when the caller does
// not configure one.
const DefaultMaxTokens = 1024

// Providers is the registry of AI backend implementations. Recognized
// params: model, api_key, base_url, max_tokens.
var Providers = provider.NewRegistry[Client]("ai")

// models maps a registered backend name to its supported model ids, in
// preference order (first entry is the default). Populated from the
// backend init() functions only.
var models = map[string][]string{}

// Client summarizes text using an external LLM API. Implementations do not
// retry; the caller decides whether a failed call is fatal.
type Client interface {
	Summarize(ctx context.Context, text, instructions string) (string, error)
}

// New creates a summarization client for the named backend. The model may
// be empty, in which case the backend's default model is used. Fails with
// a wrapped provider.ErrUnknownProvider for unregistered names.
func New(ctx context.Context, name, model, apiKey string) (Client, error) {
	return Providers.New(ctx, name, map[string]string{
		"model":   model,
		"api_key": apiKey,
	})
}

// Supported returns the sorted names of all registered AI backends.
func Supported() []string {
	return Providers.Available()
}

// Models returns the supported model ids for the named backend, default
// first. Fails with a wrapped provider.ErrUnknownProvider for
// unregistered names.
func Models(name string) ([]string, error) {
	m, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("%w: ai backend %q (available: %v)", provider.ErrUnknownProvider, name, Supported())
	}
	out := make([]string, len(m))
	copy(out, m)
	return out, nil
}

// DefaultModel returns the default model id for the named backend.
func DefaultModel(name string) (string, error) {
	m, err := Models(name)
	if err != nil {
		return "", err
	}
	return m[0], nil
}

// APIError reports a failed call to an AI backend: a non-2xx response
// (authentication failure, rate limiting, bad request) or a transport
// failure (StatusCode 0).
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API request: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// registerModels records the model catalog for a backend. Called from the
// backend init() alongside Providers.Register.
func registerModels(name string, ids ...string) {
	models[name] = ids
}

// paramMaxTokens parses the optional max_tokens factory param.
func paramMaxTokens(params map[string]string) (int, error) {
	raw := params["max_tokens"]
	if raw == "" {
		return DefaultMaxTokens, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid max_tokens %q", raw)
	}
	return n, nil
}
