// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package aiprovider

import (
	"context"
	"fmt"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

func init() {
	registerModels("openrouter",
		"openai/gpt-4o-mini",
		"anthropic/claude-3.5-sonnet",
		"google/gemini-2.0-flash-001",
		"meta-llama/llama-3.1-70b-instruct",
	)
	Providers.Register("openrouter", func(_ context.Context, params map[string]string) (Client, error) {
		apiKey := params["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("openrouter: api_key parameter is required")
		}
		maxTokens, err := paramMaxTokens(params)
		if err != nil {
			return nil, fmt.Errorf("openrouter: %w", err)
		}
		model := params["model"]
		if model == "" {
			model = models["openrouter"][0]
		}
		baseURL := params["base_url"]
		if baseURL == "" {
			baseURL = openRouterBaseURL
		}
		return newChatClient("openrouter", baseURL, apiKey, model, maxTokens), nil
	})
}
