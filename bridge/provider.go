/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package bridge

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// NewProvider selects the chat backend named in configuration. Business code
// only ever sees the Provider interface.
func NewProvider(cfg *config.Config, logger *logging.Logger, opts ...ProviderOption) (Provider, error) {
	switch cfg.AIProvider() {
	case "openai":
		return NewOpenAIProvider(cfg, logger, opts...)
	case "anthropic":
		return NewAnthropicProvider(cfg, logger, opts...)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider())
	}
}

// providerOptions collects the knobs shared by every chat backend.
type providerOptions struct {
	endpoint   string
	httpClient *http.Client
	session    ToolSession
}

// ProviderOption customizes a chat backend.
type ProviderOption func(*providerOptions)

// WithHTTPClient swaps the HTTP client, used by tests.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(o *providerOptions) { o.httpClient = client }
}

// WithEndpoint overrides the chat API endpoint.
func WithEndpoint(url string) ProviderOption {
	return func(o *providerOptions) { o.endpoint = url }
}

// WithToolSession swaps the MCP session, used by tests.
func WithToolSession(session ToolSession) ProviderOption {
	return func(o *providerOptions) { o.session = session }
}

func applyProviderOptions(cfg *config.Config, logger *logging.Logger, endpoint string, opts []ProviderOption) providerOptions {
	o := providerOptions{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.session == nil {
		o.session = NewMCPSession(cfg.MCPServerCommand(), logger)
	}
	return o
}

// newBridgeBreaker builds the circuit breaker guarding the chat API calls.
// MCP tool calls are never routed through it.
func newBridgeBreaker(name string, logger *logging.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}
