/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package identity

import (
	"context"
	"fmt"

	"github.com/leadlovers/leadlovers-mcp/logging"
)

// Session is the payload handed back after a successful token exchange.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionService exchanges SSO credentials for internal session tokens.
type SessionService struct {
	sso    SSOProvider
	tokens *TokenService
	logger *logging.Logger
}

// NewSessionService wires the SSO validator and the token minter.
func NewSessionService(sso SSOProvider, tokens *TokenService, logger *logging.Logger) *SessionService {
	return &SessionService{sso: sso, tokens: tokens, logger: logger}
}

// Create validates the SSO token pair and mints an internal session token
// for the resolved user.
func (s *SessionService) Create(ctx context.Context, token, refreshToken string) (Session, error) {
	user, err := s.sso.ValidateToken(ctx, token, refreshToken)
	if err != nil {
		return Session{}, err
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Errorf("Failed to issue session token for user %s: %v", user.ID, err)
		return Session{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Infof("Session created for user %s (%s)", user.ID, user.Email)
	return Session{Token: signed, Email: user.Email, Name: user.Name}, nil
}
