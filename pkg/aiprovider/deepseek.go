// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package aiprovider

import (
	"context"
	"fmt"
)

const deepSeekBaseURL = "https://api.deepseek.com/v1"

func init() {
	registerModels("deepseek",
		"deepseek-chat",
		"deepseek-reasoner",
	)
	Providers.Register("deepseek", func(_ context.Context, params map[string]string) (Client, error) {
		apiKey := params["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("deepseek: api_key parameter is required")
		}
		maxTokens, err := paramMaxTokens(params)
		if err != nil {
			return nil, fmt.Errorf("deepseek: %w", err)
		}
		model := params["model"]
		if model == "" {
			model = models["deepseek"][0]
		}
		baseURL := params["base_url"]
		if baseURL == "" {
			baseURL = deepSeekBaseURL
		}
		return newChatClient("deepseek", baseURL, apiKey, model, maxTokens), nil
	})
}
