/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

type fakeSSO struct {
	user User
	err  error
}

func (f *fakeSSO) ValidateToken(ctx context.Context, token, refreshToken string) (User, error) {
	return f.user, f.err
}

func TestSessionCreateMintsVerifiableToken(t *testing.T) {
	tokens, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	sso := &fakeSSO{user: User{ID: "42", Email: "ana@example.com", Name: "Ana Souza"}}
	svc := NewSessionService(sso, tokens, logging.New())

	session, err := svc.Create(context.Background(), "sso-token", "refresh-token")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if session.Email != "ana@example.com" || session.Name != "Ana Souza" {
		t.Errorf("session = %+v", session)
	}

	user, err := tokens.Verify(session.Token)
	if err != nil {
		t.Fatalf("minted token must verify: %v", err)
	}
	if user.ID != "42" {
		t.Errorf("token subject = %q, want 42", user.ID)
	}
}

func TestSessionCreatePropagatesSSOFailure(t *testing.T) {
	tokens, _ := NewTokenService("test-secret")
	svc := NewSessionService(&fakeSSO{err: ErrSSOAuthFailed}, tokens, logging.New())

	if _, err := svc.Create(context.Background(), "bad", "bad"); !errors.Is(err, ErrSSOAuthFailed) {
		t.Errorf("Create = %v, want ErrSSOAuthFailed", err)
	}
}

func newSSOClient(t *testing.T, baseURL string) *LeadLoversSSO {
	t.Helper()
	t.Setenv("LEADLOVERS_API_TOKEN", "test-token")
	cfg := config.New()
	if err := cfg.Load(); err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return NewLeadLoversSSO(cfg, logging.New(), WithSSOBaseURL(baseURL))
}

func TestSSOValidateTokenResolvesUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sso/validate-token" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["token"] != "sso-token" || req["refresh_token"] != "refresh-token" {
			t.Errorf("unexpected credentials %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "username": "ana", "email": "ana@example.com",
			"name": "Ana Souza", "user_id": 42,
		})
	}))
	defer srv.Close()

	sso := newSSOClient(t, srv.URL)
	user, err := sso.ValidateToken(context.Background(), "sso-token", "refresh-token")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if user.ID != "42" || user.Email != "ana@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestSSORejectionIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"token expired at 2026-01-01"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sso := newSSOClient(t, srv.URL)
	_, err := sso.ValidateToken(context.Background(), "expired", "expired")
	if !errors.Is(err, ErrSSOAuthFailed) {
		t.Fatalf("ValidateToken = %v, want ErrSSOAuthFailed", err)
	}
	// The upstream detail must not leak through the error
	if got := err.Error(); got != "authentication failed" {
		t.Errorf("error text = %q, want generic message", got)
	}
}

func TestSSOEmptyUserIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	sso := newSSOClient(t, srv.URL)
	if _, err := sso.ValidateToken(context.Background(), "t", "r"); !errors.Is(err, ErrSSOAuthFailed) {
		t.Errorf("ValidateToken = %v, want ErrSSOAuthFailed", err)
	}
}
