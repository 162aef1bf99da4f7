/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package beefree converts generated email copy into the BeeFree editor
// formats: first a fixed four-row simple schema, then the full editor JSON
// via the BeeFree conversion API.
package beefree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leadlovers/leadlovers-mcp/ai"
	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// Module is one content block inside a simple-schema column. BeeFree's
// simple schema uses kebab-case styling keys, hence the tag names.
type Module struct {
	Type            string  `json:"type"`
	Text            string  `json:"text"`
	Title           string  `json:"title,omitempty"`
	Href            string  `json:"href,omitempty"`
	Size            int     `json:"size,omitempty"`
	Bold            bool    `json:"bold,omitempty"`
	Align           string  `json:"align,omitempty"`
	Color           string  `json:"color,omitempty"`
	BackgroundColor string  `json:"background-color,omitempty"`
	BorderRadius    int     `json:"border-radius,omitempty"`
	LineHeight      float64 `json:"line-height,omitempty"`
	PaddingTop      int     `json:"padding-top,omitempty"`
	PaddingBottom   int     `json:"padding-bottom,omitempty"`
	PaddingLeft     int     `json:"padding-left,omitempty"`
	PaddingRight    int     `json:"padding-right,omitempty"`
}

// Column groups modules inside a row.
type Column struct {
	Weight  int      `json:"weight"`
	Modules []Module `json:"modules"`
}

// Row is one horizontal band of the template.
type Row struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Template is the simple-schema document body.
type Template struct {
	Type string `json:"type"`
	Rows []Row  `json:"rows"`
}

// SimpleSchema is the payload the conversion endpoint accepts.
type SimpleSchema struct {
	Template Template `json:"template"`
}

// Builder renders content into BeeFree formats.
type Builder struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) BuilderOption {
	return func(b *Builder) {
		b.httpClient = hc
	}
}

// WithBaseURL overrides the conversion endpoint base (tests).
func WithBaseURL(u string) BuilderOption {
	return func(b *Builder) {
		b.baseURL = strings.TrimRight(u, "/")
	}
}

// NewBuilder creates a BeeFree builder from configuration.
func NewBuilder(cfg *config.Config, logger *logging.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		baseURL:    strings.TrimRight(cfg.BeeFreeAPIURL(), "/"),
		token:      cfg.BeeFreeAPIToken(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ContentToSimpleSchema lays the copy out as the fixed four-row template:
// title, body, call-to-action button, footer. Paragraph breaks in the body
// become <br><br> because the editor renders HTML.
func (b *Builder) ContentToSimpleSchema(content ai.Content) SimpleSchema {
	single := func(name string, m Module) Row {
		return Row{Name: name, Columns: []Column{{Weight: 12, Modules: []Module{m}}}}
	}

	return SimpleSchema{Template: Template{
		Type: "email",
		Rows: []Row{
			single("header_row", Module{
				Type:          "title",
				Text:          content.Title,
				Title:         "h1",
				Size:          24,
				Bold:          true,
				Align:         "center",
				Color:         "#1A5276",
				PaddingTop:    30,
				PaddingBottom: 20,
			}),
			single("content_row", Module{
				Type:          "paragraph",
				Text:          strings.ReplaceAll(content.Body, "\n\n", "<br><br>"),
				Size:          16,
				LineHeight:    1.6,
				Color:         "#333333",
				PaddingTop:    10,
				PaddingBottom: 25,
				PaddingLeft:   20,
				PaddingRight:  20,
			}),
			single("cta_row", Module{
				Type:            "button",
				Text:            content.CTA,
				Href:            "https://example.com",
				BackgroundColor: "#007BFF",
				Color:           "#FFFFFF",
				BorderRadius:    8,
				Align:           "center",
				PaddingTop:      18,
				PaddingBottom:   18,
				PaddingLeft:     40,
				PaddingRight:    40,
			}),
			single("footer_row", Module{
				Type:          "paragraph",
				Text:          content.Footer,
				Size:          12,
				Color:         "#666666",
				Align:         "center",
				PaddingTop:    40,
				PaddingBottom: 20,
			}),
		},
	}}
}

// SimpleToFullJSON converts a simple schema into the full editor document
// through the BeeFree conversion endpoint. The result is the indented JSON
// string the editor loads directly.
func (b *Builder) SimpleToFullJSON(ctx context.Context, schema SimpleSchema) (string, error) {
	if b.token == "" {
		return "", fmt.Errorf("BeeFree API token is not configured")
	}

	payload, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to encode simple schema: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/conversion/simple-to-full-json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build conversion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "leadlovers-mcp/"+global.Version)

	httpResp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("conversion request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read conversion response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		b.logger.Errorf("BeeFree API error (%d): %s", httpResp.StatusCode, strings.TrimSpace(string(data)))
		return "", fmt.Errorf("conversion rejected with status %d", httpResp.StatusCode)
	}

	var full any
	if err := json.Unmarshal(data, &full); err != nil {
		return "", fmt.Errorf("malformed conversion response: %w", err)
	}
	pretty, err := json.MarshalIndent(full, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to re-encode full JSON: %w", err)
	}
	return string(pretty), nil
}
