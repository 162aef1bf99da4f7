/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func renderedText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestFormatSuccessKeepsDetailOrder(t *testing.T) {
	res := formatSuccess("Lead criado", []Detail{
		detail("Nome", "Ana"),
		detail("Telefone", ""),
		detail("Email", "ana@example.com"),
	}, "linha de contexto")

	text := renderedText(t, res)
	if res.IsError {
		t.Error("success rendering must not set IsError")
	}

	nome := strings.Index(text, "**Nome:** Ana")
	email := strings.Index(text, "**Email:** ana@example.com")
	if nome == -1 || email == -1 || nome > email {
		t.Errorf("details missing or out of order:\n%s", text)
	}
	if strings.Contains(text, "Telefone") {
		t.Error("empty detail value must be skipped")
	}
	if !strings.Contains(text, "linha de contexto") {
		t.Error("context line missing")
	}
}

func TestFormatErrorLowersAction(t *testing.T) {
	res := formatError("Criar o lead", "Causa X", "Sugestão Y")
	text := renderedText(t, res)

	if !res.IsError {
		t.Error("formatError must set IsError")
	}
	if !strings.Contains(text, "❌ **Não foi possível criar o lead**") {
		t.Errorf("action not lowered:\n%s", text)
	}
	if !strings.Contains(text, "**Causa:** Causa X") || !strings.Contains(text, "**Sugestão:** Sugestão Y") {
		t.Errorf("cause or suggestion missing:\n%s", text)
	}
}

func TestFormatAPIErrorCategories(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"token", "Invalid token provided", "Token de autenticação inválido ou expirado"},
		{"unauthorized", "request was Unauthorized", "Token de autenticação inválido ou expirado"},
		{"duplicate email", "Erro: este email já existe", "Email já existe na base de dados"},
		{"machine", "Máquina não localizada", "Código da máquina inválido"},
		{"sequence", "sequence code not found", "Código da sequência de email inválido"},
		{"fallthrough", "Falha inesperada no processamento", "Falha inesperada no processamento"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := formatAPIError(tt.message, "criar o lead")
			if !res.IsError {
				t.Error("API errors must set IsError")
			}
			if text := renderedText(t, res); !strings.Contains(text, tt.want) {
				t.Errorf("text missing %q:\n%s", tt.want, text)
			}
		})
	}
}

func TestFormatValidationErrorListsIssues(t *testing.T) {
	res := formatValidationError([]string{
		"Missing required field: page",
		"Unexpected field: pageSize (not allowed by schema)",
	})
	text := renderedText(t, res)

	if !strings.Contains(text, "- Missing required field: page") {
		t.Errorf("issue bullet missing:\n%s", text)
	}
	if !strings.Contains(text, "Verifique os dados e tente novamente.") {
		t.Errorf("suggestion missing:\n%s", text)
	}
}
