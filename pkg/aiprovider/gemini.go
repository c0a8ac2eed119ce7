// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package aiprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

func init() {
	registerModels("gemini",
		"gemini-2.0-flash",
		"gemini-2.0-flash-lite",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	)
	Providers.Register("gemini", func(_ context.Context, params map[string]string) (Client, error) {
		apiKey := params["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("gemini: api_key parameter is required")
		}
		maxTokens, err := paramMaxTokens(params)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		model := params["model"]
		if model == "" {
			model = models["gemini"][0]
		}
		c := NewGeminiClient(apiKey, model)
		c.maxTokens = maxTokens
		if params["base_url"] != "" {
			c.baseURL = params["base_url"]
		}
		return c, nil
	})
}

// GeminiClient summarizes text using the Google Gemini generateContent API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:    apiKey,
		model:     model,
		baseURL:   geminiBaseURL,
		maxTokens: DefaultMaxTokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Summarize sends one generateContent request and returns the generated
// text. Instructions are prepended to the input text as a single user turn.
func (c *GeminiClient) Summarize(ctx context.Context, text, instructions string) (string, error) {
	prompt := text
	if instructions != "" {
		prompt = instructions + "\n\n" + text
	}

	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: c.maxTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &APIError{Provider: "gemini", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: "gemini", StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var result geminiGenerateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini: response contained no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

type geminiGenerateRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}
