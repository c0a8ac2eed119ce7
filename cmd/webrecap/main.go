// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/webrecap/webrecap/pkg/aiprovider"
	"github.com/webrecap/webrecap/pkg/config"
	"github.com/webrecap/webrecap/pkg/fetcher"
	"github.com/webrecap/webrecap/pkg/observability/logging"
	"github.com/webrecap/webrecap/pkg/pipeline"
	"github.com/webrecap/webrecap/pkg/runstore"
	_ "github.com/webrecap/webrecap/pkg/runstore/filesystem"
	_ "github.com/webrecap/webrecap/pkg/runstore/memory"
	_ "github.com/webrecap/webrecap/pkg/runstore/postgres"
	_ "github.com/webrecap/webrecap/pkg/runstore/s3"
	_ "github.com/webrecap/webrecap/pkg/runstore/sqlite"
	"github.com/webrecap/webrecap/pkg/websearch"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	query := flag.String("query", "", "Search query to scrape and summarize")
	aiName := flag.String("provider", "", "AI provider (gemini, openai, openrouter, deepseek)")
	model := flag.String("model", "", "Model id; empty selects the provider default")
	maxResults := flag.Int("max-results", 0, "Number of search results to request")
	maxURLs := flag.Int("max-urls", 0, "Maximum number of pages to fetch and summarize")
	save := flag.Bool("save", false, "Persist the result to the configured run store")
	listModels := flag.String("list-models", "", "Print the model catalog for an AI provider and exit")
	listProviders := flag.Bool("list-providers", false, "Print available backends and exit")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("webrecap\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		os.Exit(0)
	}

	if *listProviders {
		fmt.Printf("ai:     %s\n", strings.Join(aiprovider.Supported(), ", "))
		fmt.Printf("search: %s\n", strings.Join(websearch.Providers.Available(), ", "))
		fmt.Printf("store:  %s\n", strings.Join(runstore.Providers.Available(), ", "))
		os.Exit(0)
	}

	if *listModels != "" {
		models, err := aiprovider.Models(*listModels)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, m := range models {
			fmt.Println(m)
		}
		os.Exit(0)
	}

	if *query == "" {
		fmt.Fprintln(os.Stderr, "a -query is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.Default()
	}
	if *aiName != "" {
		cfg.AI.Provider = *aiName
	}
	if *model != "" {
		cfg.AI.Model = *model
	}
	if *maxResults > 0 {
		cfg.Search.MaxResults = *maxResults
		if *maxURLs == 0 {
			cfg.Fetch.MaxURLs = *maxResults
		}
	}
	if *maxURLs > 0 {
		cfg.Fetch.MaxURLs = *maxURLs
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	logger.Info("starting webrecap run",
		"version", Version,
		"query", *query,
		"search_provider", cfg.Search.Provider,
		"ai_provider", cfg.AI.Provider)

	ctx := context.Background()

	search, err := websearch.Providers.New(ctx, cfg.Search.Provider, cfg.SearchParams())
	if err != nil {
		logger.Error("failed to initialize search provider", "error", err)
		os.Exit(1)
	}

	ai, err := aiprovider.Providers.New(ctx, cfg.AI.Provider, cfg.AIParams())
	if err != nil {
		logger.Error("failed to initialize AI provider", "error", err)
		os.Exit(1)
	}

	pages := fetcher.New(fetcher.Options{
		Timeout:      cfg.Fetch.Timeout,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMaxInputChars(pipeline.TokensToChars(3000)),
	}
	if cfg.Store.Type != "" {
		store, err := runstore.Providers.New(ctx, cfg.Store.Type, cfg.StoreParams())
		if err != nil {
			logger.Error("failed to initialize run store", "type", cfg.Store.Type, "error", err)
			os.Exit(1)
		}
		defer store.Close(ctx)
		opts = append(opts, pipeline.WithStore(store))
		logger.Info("initialized run store", "type", cfg.Store.Type)
	} else if *save {
		logger.Error("-save requires a store section in the configuration")
		os.Exit(1)
	}

	orchestrator := pipeline.New(search, ai, pages, opts...)

	result, err := orchestrator.Run(ctx, pipeline.Params{
		Query:      *query,
		MaxResults: cfg.Search.MaxResults,
		MaxURLs:    cfg.Fetch.MaxURLs,
		SaveRun:    *save,
	})
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
