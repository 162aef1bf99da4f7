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

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider processes queries with the chat completions API and the MCP
// tool server. Consecutive AI failures trip a circuit breaker; MCP tool calls
// are not routed through it.
type OpenAIProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	session    ToolSession
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
}

// NewOpenAIProvider creates the provider. The MCP server process is spawned
// lazily on the first query.
func NewOpenAIProvider(cfg *config.Config, logger *logging.Logger, opts ...ProviderOption) (*OpenAIProvider, error) {
	if cfg.OpenAIAPIKey() == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	o := applyProviderOptions(cfg, logger, openAIChatURL, opts)
	p := &OpenAIProvider{
		apiKey:     cfg.OpenAIAPIKey(),
		model:      cfg.OpenAIModel(),
		endpoint:   o.endpoint,
		httpClient: o.httpClient,
		session:    o.session,
		logger:     logger,
	}
	p.breaker = newBridgeBreaker("openai-bridge", logger)
	return p, nil
}

type openAIChatFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
}

type openAIChatTool struct {
	Type     string             `json:"type"`
	Function openAIChatFunction `json:"function"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	Messages  []openAIChatMessage `json:"messages"`
	Tools     []openAIChatTool    `json:"tools,omitempty"`
}

type openAIToolCall struct {
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content   string           `json:"content"`
			ToolCalls []openAIToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// ProcessQuery sends the query to the model with the MCP tools attached and
// resolves any tool call the model makes. A tool call wins over text when
// the model produces both.
func (p *OpenAIProvider) ProcessQuery(ctx context.Context, query string) (Reply, error) {
	tools, err := p.session.Tools(ctx)
	if err != nil {
		return Reply{}, err
	}

	request := openAIChatRequest{
		Model:     p.model,
		MaxTokens: 1000,
		Messages:  []openAIChatMessage{{Role: "user", Content: query}},
	}
	for _, tool := range tools {
		request.Tools = append(request.Tools, openAIChatTool{
			Type: "function",
			Function: openAIChatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}

	raw, err := p.breaker.Execute(func() (interface{}, error) {
		return p.createChatCompletion(ctx, request)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Reply{}, ErrAIUnavailable
		}
		return Reply{}, err
	}
	response := raw.(openAIChatResponse)

	reply := Reply{Status: StatusError, Result: textResult("No tool result")}
	if len(response.Choices) == 0 {
		return reply, nil
	}
	message := response.Choices[0].Message

	if message.Content != "" {
		p.logger.Infof("Model response: %s", message.Content)
		reply.Status = StatusSuccess
		reply.Result = textResult(message.Content)
	}

	for _, call := range message.ToolCalls {
		name := call.Function.Name
		var args map[string]any
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				p.logger.Errorf("Malformed arguments for tool %s: %v", name, err)
				reply.Status = StatusError
				reply.Result = textResult(fmt.Sprintf("Error calling tool %s: malformed arguments", name))
				continue
			}
		}

		p.logger.Infof("Calling tool %s", name)
		result, err := p.session.Call(ctx, name, args)
		if err != nil {
			p.logger.Errorf("Error calling tool %s: %v", name, err)
			reply.Status = StatusError
			reply.Result = textResult(fmt.Sprintf("Error calling tool %s: %v", name, err))
			continue
		}
		foldToolResult(result, &reply)
	}
	return reply, nil
}

func (p *OpenAIProvider) createChatCompletion(ctx context.Context, request openAIChatRequest) (openAIChatResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return openAIChatResponse{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return openAIChatResponse{}, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return openAIChatResponse{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return openAIChatResponse{}, fmt.Errorf("chat API returned %d: %s", resp.StatusCode, detail)
	}

	var response openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return openAIChatResponse{}, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return response, nil
}

// Close shuts down the MCP server process.
func (p *OpenAIProvider) Close() error {
	return p.session.Close()
}
