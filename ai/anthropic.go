/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// anthropicGenerator calls the messages API.
type anthropicGenerator struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

func newAnthropicGenerator(cfg *config.Config, logger *logging.Logger) *anthropicGenerator {
	return &anthropicGenerator{
		apiKey:     cfg.AnthropicAPIKey(),
		model:      cfg.AnthropicModel(),
		endpoint:   anthropicEndpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (Content, error) {
	reqBody := anthropicRequest{
		Model:       g.model,
		MaxTokens:   8192,
		Temperature: 0.7,
		System:      systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: userPrompt(prompt)},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Content{}, fmt.Errorf("failed to encode messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Content{}, fmt.Errorf("failed to build messages request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("messages request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read messages response: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Content{}, fmt.Errorf("malformed messages response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		msg := httpResp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return Content{}, fmt.Errorf("messages request rejected: %s", msg)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return Content{}, fmt.Errorf("messages response carried no text block")
	}

	content, err := CleanJSONResponse(text)
	if err != nil {
		g.logger.Errorf("error cleaning JSON response: %v", err)
		return Content{}, err
	}
	return validateContent(content)
}
