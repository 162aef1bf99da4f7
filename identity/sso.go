/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// ErrSSOAuthFailed is the only error detail a failed SSO validation
// surfaces to callers.
var ErrSSOAuthFailed = errors.New("authentication failed")

// SSOProvider validates LeadLovers SSO credentials and resolves the user
// behind them.
type SSOProvider interface {
	ValidateToken(ctx context.Context, token, refreshToken string) (User, error)
}

// LeadLoversSSO validates tokens against the LeadLovers global identity
// service.
type LeadLoversSSO struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// SSOOption customizes the SSO client.
type SSOOption func(*LeadLoversSSO)

// WithSSOHTTPClient swaps the HTTP client, used by tests.
func WithSSOHTTPClient(client *http.Client) SSOOption {
	return func(s *LeadLoversSSO) { s.httpClient = client }
}

// WithSSOBaseURL overrides the SSO endpoint base URL.
func WithSSOBaseURL(url string) SSOOption {
	return func(s *LeadLoversSSO) { s.baseURL = url }
}

// NewLeadLoversSSO creates the SSO client for the configured identity
// service.
func NewLeadLoversSSO(cfg *config.Config, logger *logging.Logger, opts ...SSOOption) *LeadLoversSSO {
	sso := &LeadLoversSSO{
		baseURL:    cfg.SSOAPIURL(),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(sso)
	}
	return sso
}

type ssoValidateRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type ssoUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserID   int    `json:"user_id"`
}

// ValidateToken checks the SSO token pair and returns the user it belongs
// to. Every failure collapses to ErrSSOAuthFailed so callers cannot leak
// which step rejected the credential.
func (s *LeadLoversSSO) ValidateToken(ctx context.Context, token, refreshToken string) (User, error) {
	body, err := json.Marshal(ssoValidateRequest{Token: token, RefreshToken: refreshToken})
	if err != nil {
		return User{}, fmt.Errorf("failed to encode SSO request: %w", err)
	}

	url := s.baseURL + "/sso/validate-token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return User{}, fmt.Errorf("failed to build SSO request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Errorf("LeadLovers SSO request failed: %v", err)
		return User{}, ErrSSOAuthFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warnf("LeadLovers SSO rejected token: status %d", resp.StatusCode)
		return User{}, ErrSSOAuthFailed
	}

	var user ssoUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		s.logger.Errorf("LeadLovers SSO returned malformed body: %v", err)
		return User{}, ErrSSOAuthFailed
	}
	if user.UserID == 0 || user.Email == "" {
		s.logger.Error("LeadLovers SSO: authentication failed")
		return User{}, ErrSSOAuthFailed
	}

	return User{
		ID:    strconv.Itoa(user.UserID),
		Email: user.Email,
		Name:  user.Name,
	}, nil
}
