/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// ErrAIUnavailable is returned while the circuit breaker is open and AI
// calls are being rejected to let the upstream recover.
var ErrAIUnavailable = errors.New("AI provider temporarily unavailable")

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

// AnthropicProvider processes queries with the Anthropic messages API and
// the MCP tool server. Consecutive AI failures trip a circuit breaker; MCP
// tool calls are not routed through it.
type AnthropicProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	session    ToolSession
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
}

// NewAnthropicProvider creates the provider. The MCP server process is
// spawned lazily on the first query.
func NewAnthropicProvider(cfg *config.Config, logger *logging.Logger, opts ...ProviderOption) (*AnthropicProvider, error) {
	if cfg.AnthropicAPIKey() == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is not set")
	}

	o := applyProviderOptions(cfg, logger, anthropicMessagesURL, opts)
	p := &AnthropicProvider{
		apiKey:     cfg.AnthropicAPIKey(),
		model:      cfg.AnthropicModel(),
		endpoint:   o.endpoint,
		httpClient: o.httpClient,
		session:    o.session,
		logger:     logger,
	}
	p.breaker = newBridgeBreaker("anthropic-bridge", logger)
	return p, nil
}

type anthropicTool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"input_schema"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicContentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

// ProcessQuery sends the query to the model with the MCP tools attached and
// resolves any tool call the model makes. The last content block wins when
// the model produces both text and a tool call.
func (p *AnthropicProvider) ProcessQuery(ctx context.Context, query string) (Reply, error) {
	tools, err := p.session.Tools(ctx)
	if err != nil {
		return Reply{}, err
	}

	request := anthropicRequest{
		Model:     p.model,
		MaxTokens: 1000,
		Messages:  []anthropicMessage{{Role: "user", Content: query}},
	}
	for _, tool := range tools {
		request.Tools = append(request.Tools, anthropicTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}

	raw, err := p.breaker.Execute(func() (interface{}, error) {
		return p.createMessage(ctx, request)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Reply{}, ErrAIUnavailable
		}
		return Reply{}, err
	}
	response := raw.(anthropicResponse)

	reply := Reply{Status: StatusError, Result: textResult("No tool result")}
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			p.logger.Infof("Model response: %s", block.Text)
			reply.Status = StatusSuccess
			reply.Result = textResult(block.Text)

		case "tool_use":
			p.logger.Infof("Calling tool %s", block.Name)
			result, err := p.session.Call(ctx, block.Name, block.Input)
			if err != nil {
				p.logger.Errorf("Error calling tool %s: %v", block.Name, err)
				reply.Status = StatusError
				reply.Result = textResult(fmt.Sprintf("Error calling tool %s: %v", block.Name, err))
				continue
			}
			foldToolResult(result, &reply)
		}
	}
	return reply, nil
}

func (p *AnthropicProvider) createMessage(ctx context.Context, request anthropicRequest) (anthropicResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return anthropicResponse{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return anthropicResponse{}, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return anthropicResponse{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return anthropicResponse{}, fmt.Errorf("chat API returned %d: %s", resp.StatusCode, detail)
	}

	var response anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return anthropicResponse{}, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return response, nil
}

// Close shuts down the MCP server process.
func (p *AnthropicProvider) Close() error {
	return p.session.Close()
}
