// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package aiprovider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func init() {
	registerModels("openai",
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
	)
	Providers.Register("openai", func(_ context.Context, params map[string]string) (Client, error) {
		apiKey := params["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("openai: api_key parameter is required")
		}
		maxTokens, err := paramMaxTokens(params)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		model := params["model"]
		if model == "" {
			model = models["openai"][0]
		}
		return NewOpenAIClient(params["base_url"], apiKey, model, maxTokens), nil
	})
}

// OpenAIClient summarizes text using the official OpenAI Go SDK. A custom
// base URL allows pointing at OpenAI-compatible backends.
type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates an OpenAI client for the given model.
func NewOpenAIClient(baseURL, apiKey, model string, maxTokens int) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Summarize sends one chat-completion request with the instructions as the
// system message and the text as the user message.
func (c *OpenAIClient) Summarize(ctx context.Context, text, instructions string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if instructions != "" {
		messages = append(messages, openai.SystemMessage(instructions))
	}
	messages = append(messages, openai.UserMessage(text))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  messages,
		MaxTokens: openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", &APIError{Provider: "openai", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: response contained no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
