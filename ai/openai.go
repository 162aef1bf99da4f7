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

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// openAIGenerator calls the chat completions API with JSON response mode.
type openAIGenerator struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

func newOpenAIGenerator(cfg *config.Config, logger *logging.Logger) *openAIGenerator {
	return &openAIGenerator{
		apiKey:     cfg.OpenAIAPIKey(),
		model:      cfg.OpenAIModel(),
		endpoint:   openAIEndpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (Content, error) {
	reqBody := openAIRequest{
		Model: g.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(prompt)},
		},
		MaxTokens:   8192,
		Temperature: 0.7,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Content{}, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Content{}, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("completion request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read completion response: %w", err)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Content{}, fmt.Errorf("malformed completion response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		msg := httpResp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return Content{}, fmt.Errorf("completion request rejected: %s", msg)
	}
	if len(parsed.Choices) == 0 {
		return Content{}, fmt.Errorf("completion response carried no choices")
	}

	content, err := CleanJSONResponse(parsed.Choices[0].Message.Content)
	if err != nil {
		g.logger.Errorf("error cleaning JSON response: %v", err)
		return Content{}, err
	}
	return validateContent(content)
}
