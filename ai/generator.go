/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package ai generates email marketing copy through a text-completion
// backend. The backend is chosen once, at construction, from configuration;
// business code only ever sees the Generator interface.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// Content is the structured email copy a backend must produce.
type Content struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	CTA    string `json:"cta"`
	Footer string `json:"footer"`
}

// DefaultFooter fills in when the model omits one.
const DefaultFooter = "Enviado com 💙 pela nossa equipe"

// Generator produces email content from a free-text briefing.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Content, error)
}

// NewGenerator selects the backend named in configuration.
func NewGenerator(cfg *config.Config, logger *logging.Logger) (Generator, error) {
	switch cfg.AIProvider() {
	case "openai":
		if cfg.OpenAIAPIKey() == "" {
			return nil, fmt.Errorf("openai selected but OPENAI_API_KEY is not set")
		}
		return newOpenAIGenerator(cfg, logger), nil
	case "anthropic":
		if cfg.AnthropicAPIKey() == "" {
			return nil, fmt.Errorf("anthropic selected but ANTHROPIC_API_KEY is not set")
		}
		return newAnthropicGenerator(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider())
	}
}

// validateContent enforces the required fields and applies trimming plus the
// footer default.
func validateContent(c Content) (Content, error) {
	c.Title = strings.TrimSpace(c.Title)
	c.Body = strings.TrimSpace(c.Body)
	c.CTA = strings.TrimSpace(c.CTA)
	c.Footer = strings.TrimSpace(c.Footer)

	if c.Title == "" || c.Body == "" || c.CTA == "" {
		return Content{}, fmt.Errorf("invalid AI response format: title, body and cta are required")
	}
	if c.Footer == "" {
		c.Footer = DefaultFooter
	}
	return c, nil
}
