/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package identity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	user := User{ID: "42", Email: "ana@example.com", Name: "Ana Souza"}
	signed, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != user {
		t.Errorf("Verify = %+v, want %+v", got, user)
	}
}

func TestEmptySecretIsRejected(t *testing.T) {
	if _, err := NewTokenService(""); err == nil {
		t.Error("empty secret must be rejected")
	}
}

func TestTamperedTokenIsRejected(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	signed, err := svc.Issue(User{ID: "42", Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Flip a character in the signature segment
	tampered := signed[:len(signed)-2] + "xx"
	if _, err := svc.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(tampered) = %v, want ErrInvalidToken", err)
	}
}

func TestWrongSecretIsRejected(t *testing.T) {
	issuer, _ := NewTokenService("secret-a")
	verifier, _ := NewTokenService("secret-b")

	signed, err := issuer.Issue(User{ID: "42", Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	svc.ttl = -time.Hour

	signed, err := svc.Issue(User{ID: "42", Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Verify(signed); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify(expired) = %v, want ErrExpiredToken", err)
	}
}

func TestTokenWithoutSubjectIsRejected(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name":  "Ana",
		"email": "ana@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := svc.Verify(signed); !errors.Is(err, ErrMissingClaim) {
		t.Errorf("Verify without sub = %v, want ErrMissingClaim", err)
	}
}

func TestUnexpectedSigningMethodIsRejected(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// alg=none token with an empty signature
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42"})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := svc.Verify(signed); err == nil || !strings.Contains(err.Error(), "invalid token") {
		t.Errorf("Verify(alg=none) = %v, want invalid token error", err)
	}
}
