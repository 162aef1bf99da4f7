/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package result defines the outcome envelope shared by every application
// service. A Result is constructed once per call and never mutated; callers
// must branch on IsSuccess, never on the payload alone, because failed
// results still carry a shaped placeholder so schema validation holds.
package result

import "strings"

// Result wraps a service outcome.
type Result[T any] struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
}

// Ok creates a success result with the given payload.
func Ok[T any](message string, data T) Result[T] {
	return Result[T]{IsSuccess: true, Message: message, Data: data}
}

// Fail creates a failure result. The payload is a shaped default so that
// downstream output-schema validation still succeeds structurally.
func Fail[T any](message string, data T) Result[T] {
	return Result[T]{IsSuccess: false, Message: message, Data: data}
}

// failureKeywords are the substrings the upstream CRM embeds in otherwise
// successful HTTP 200 responses to signal a domain-level rejection. The API
// has no structured status codes for these, so classification is textual.
// Keep this a plain data table; the matching rules live nowhere else.
var failureKeywords = []string{
	"erro",
	"error",
	"falha",
	"inválido",
	"invalid",
}

// IsFailureMessage reports whether an upstream free-text message signals a
// business error despite transport success. Matching is case-insensitive
// substring search over the keyword table.
func IsFailureMessage(message string) bool {
	if message == "" {
		return false
	}
	lower := strings.ToLower(message)
	for _, kw := range failureKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
