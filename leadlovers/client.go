/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package leadlovers wraps the LeadLovers web API. The client never returns
// a Go error from a request method: every outcome, including transport
// failure, is folded into a Response so the tool pipeline has a single
// branch point. Callers must not treat Err as the only failure signal;
// IsSuccess is the contract.
package leadlovers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// Response is the uniform outcome of an upstream call.
type Response struct {
	IsSuccess  bool
	StatusCode int
	Data       json.RawMessage
	Err        string
}

// API is the request surface the tool services consume. Query parameters
// travel separately from the path so the client can merge the credential in
// one place.
type API interface {
	Get(ctx context.Context, path string, query url.Values) Response
	Post(ctx context.Context, path string, body any) Response
	Put(ctx context.Context, path string, body any) Response
	Delete(ctx context.Context, path string, query url.Values) Response
}

// Client talks to the LeadLovers web API over HTTPS.
type Client struct {
	baseURL    string
	token      string
	maxRetries int
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates an upstream API client from configuration.
func NewClient(cfg *config.Config, logger *logging.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.LeadLoversAPIURL(), "/"),
		token:      cfg.LeadLoversAPIToken(),
		maxRetries: cfg.MaxRetries(),
		httpClient: &http.Client{Timeout: cfg.ToolTimeout()},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.token == "" {
		logger.Warn("no API token configured - upstream requests may fail")
	}
	return c
}

// Get performs an idempotent read. Transport failures and 5xx responses are
// retried with exponential backoff up to the configured bound.
func (c *Client) Get(ctx context.Context, path string, query url.Values) Response {
	return c.doIdempotent(ctx, http.MethodGet, path, query)
}

// Post performs a create. Never retried.
func (c *Client) Post(ctx context.Context, path string, body any) Response {
	return c.doWithBody(ctx, http.MethodPost, path, body)
}

// Put performs an update. Never retried.
func (c *Client) Put(ctx context.Context, path string, body any) Response {
	return c.doWithBody(ctx, http.MethodPut, path, body)
}

// Delete performs a removal. The upstream delete endpoints take all their
// arguments in the query string. Never retried; the upstream delete is not
// declared idempotent.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) Response {
	return c.doOnce(ctx, http.MethodDelete, path, query, nil)
}

func (c *Client) doIdempotent(ctx context.Context, method, path string, query url.Values) Response {
	var resp Response
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debugf("retrying %s %s (attempt %d/%d)", method, path, attempt, c.maxRetries)
			select {
			case <-ctx.Done():
				return Response{Err: "request cancelled: " + ctx.Err().Error()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		resp = c.doOnce(ctx, method, path, query, nil)
		if resp.IsSuccess || !c.retryable(resp) {
			return resp
		}
	}
	return resp
}

// retryable reports whether a failed response is worth another attempt.
// Client errors (4xx) are definitive; transport failures and server errors
// are not.
func (c *Client) retryable(resp Response) bool {
	if resp.StatusCode == 0 {
		return true // transport failure, no response at all
	}
	return resp.StatusCode >= 500
}

func (c *Client) doWithBody(ctx context.Context, method, path string, body any) Response {
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{Err: fmt.Sprintf("failed to encode request body: %v", err)}
	}
	return c.doOnce(ctx, method, path, nil, payload)
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body []byte) Response {
	if query == nil {
		query = url.Values{}
	}
	// The upstream expects the credential as a query parameter on every
	// endpoint, in addition to the bearer header.
	if c.token != "" && query.Get("token") == "" {
		query.Set("token", c.token)
	}

	endpoint := c.baseURL + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return Response{Err: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "leadlovers-mcp/"+global.Version)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("%s %s transport error: %v", method, path, err)
		return Response{Err: fmt.Sprintf("request failed: %v", err)}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.logger.Errorf("%s %s body read error: %v", method, path, err)
		return Response{StatusCode: httpResp.StatusCode, Err: fmt.Sprintf("failed to read response: %v", err)}
	}

	if httpResp.StatusCode == http.StatusUnauthorized {
		c.logger.Error("authentication error (401) - please check your API token")
	} else if httpResp.StatusCode >= 500 {
		c.logger.Errorf("server error: %d on %s %s", httpResp.StatusCode, method, path)
	}

	if httpResp.StatusCode >= 400 {
		return Response{
			StatusCode: httpResp.StatusCode,
			Data:       normalizeJSON(data),
			Err:        fmt.Sprintf("upstream returned %d %s", httpResp.StatusCode, http.StatusText(httpResp.StatusCode)),
		}
	}

	normalized := normalizeJSON(data)
	if normalized == nil && len(bytes.TrimSpace(data)) > 0 {
		// HTML error pages and proxy text arrive with a 200 now and then.
		c.logger.Errorf("%s %s returned non-JSON body", method, path)
		return Response{
			StatusCode: httpResp.StatusCode,
			Err:        "upstream returned a malformed (non-JSON) response",
		}
	}

	return Response{
		IsSuccess:  true,
		StatusCode: httpResp.StatusCode,
		Data:       normalized,
	}
}

// normalizeJSON returns the body when it parses as JSON, nil otherwise.
func normalizeJSON(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}
