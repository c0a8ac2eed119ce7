// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the library configuration from a YAML file with
// environment variable overrides for credentials. Unrecognized keys are
// ignored; missing keys take documented defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Search SearchConfig `yaml:"search"`
	AI     AIConfig     `yaml:"ai"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// SearchConfig selects and configures the web search backend
type SearchConfig struct {
	Provider   string `yaml:"provider"`    // "serper" (default), "tavily", "brave"
	APIKey     string `yaml:"api_key"`
	MaxResults int    `yaml:"max_results"` // default 5
}

// AIConfig selects and configures the summarization backend
type AIConfig struct {
	Provider  string `yaml:"provider"`   // "gemini" (default), "openai", "openrouter", "deepseek"
	Model     string `yaml:"model"`      // empty = backend default
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`   // override for OpenAI-compatible backends
	MaxTokens int    `yaml:"max_tokens"` // default 1024
}

// FetchConfig configures page retrieval
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`        // default 15s
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"` // default 5 MiB
	MaxURLs      int           `yaml:"max_urls"`       // default = search.max_results
}

// StoreConfig selects and configures the optional run store backend
type StoreConfig struct {
	Type     string `yaml:"type"` // "" = none; memory|filesystem|sqlite|postgres|s3
	BaseDir  string `yaml:"base_dir"`
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `yaml:"level"`  // default "info"
	Format string `yaml:"format"` // default "text"
}

// searchKeyEnv maps a search provider to its credential variable.
var searchKeyEnv = map[string]string{
	"serper": "SERPER_API_KEY",
	"tavily": "TAVILY_API_KEY",
	"brave":  "BRAVE_API_KEY",
}

// aiKeyEnv maps an AI provider to its credential variable.
var aiKeyEnv = map[string]string{
	"gemini":     "GEMINI_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"deepseek":   "DEEPSEEK_API_KEY",
}

// Load loads configuration from a YAML file, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Default returns the default configuration with environment credentials
// applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "serper"
	}
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 1024
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = 15 * time.Second
	}
	if cfg.Fetch.MaxBodyBytes <= 0 {
		cfg.Fetch.MaxBodyBytes = 5 << 20
	}
	if cfg.Fetch.MaxURLs <= 0 {
		cfg.Fetch.MaxURLs = cfg.Search.MaxResults
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// applyEnvOverrides resolves credentials once at load time; nothing reads
// the environment after this.
func applyEnvOverrides(cfg *Config) {
	if env := searchKeyEnv[cfg.Search.Provider]; env != "" {
		if v := os.Getenv(env); v != "" {
			cfg.Search.APIKey = v
		}
	}
	if env := aiKeyEnv[cfg.AI.Provider]; env != "" {
		if v := os.Getenv(env); v != "" {
			cfg.AI.APIKey = v
		}
	}
}

// SearchParams returns the factory params for the configured search
// backend.
func (c *Config) SearchParams() map[string]string {
	return map[string]string{
		"api_key": c.Search.APIKey,
	}
}

// AIParams returns the factory params for the configured AI backend.
func (c *Config) AIParams() map[string]string {
	return map[string]string{
		"model":      c.AI.Model,
		"api_key":    c.AI.APIKey,
		"base_url":   c.AI.BaseURL,
		"max_tokens": strconv.Itoa(c.AI.MaxTokens),
	}
}

// StoreParams returns the factory params for the configured run store
// backend.
func (c *Config) StoreParams() map[string]string {
	return map[string]string{
		"base_dir": c.Store.BaseDir,
		"path":     c.Store.Path,
		"dsn":      c.Store.DSN,
		"bucket":   c.Store.Bucket,
		"region":   c.Store.Region,
		"prefix":   c.Store.Prefix,
		"endpoint": c.Store.Endpoint,
	}
}
