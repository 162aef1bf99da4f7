/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Detail is one labeled value in a success rendering. A slice keeps the
// display order deterministic.
type Detail struct {
	Key   string
	Value string
}

// detail builds one labeled entry; formatSuccess skips entries whose value
// is empty, so absent optionals never render as blank lines.
func detail(key, value string) Detail {
	return Detail{Key: key, Value: value}
}

// formatSuccess renders the ✅ header, the key/value details and any context
// lines. Empty detail values are skipped.
func formatSuccess(action string, details []Detail, contextInfo ...string) *mcp.CallToolResult {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ **%s**\n\n", action)

	for _, d := range details {
		if d.Value != "" {
			fmt.Fprintf(&b, "**%s:** %s\n", d.Key, d.Value)
		}
	}

	if len(contextInfo) > 0 {
		b.WriteString("\n" + strings.Join(contextInfo, "\n"))
	}

	return mcp.NewToolResultText(strings.TrimSpace(b.String()))
}

// formatError renders the ❌ header with optional cause and suggestion.
func formatError(action, cause, suggestion string) *mcp.CallToolResult {
	var b strings.Builder
	fmt.Fprintf(&b, "❌ **Não foi possível %s**", strings.ToLower(action))

	if cause != "" {
		fmt.Fprintf(&b, "\n\n**Causa:** %s", cause)
	}
	if suggestion != "" {
		fmt.Fprintf(&b, "\n**Sugestão:** %s", suggestion)
	}

	return mcp.NewToolResultError(b.String())
}

// formatValidationError renders schema violations field by field. These are
// caller mistakes; the wording points back at the input.
func formatValidationError(issues []string) *mcp.CallToolResult {
	var b strings.Builder
	b.WriteString("❌ **Dados inválidos fornecidos**\n\n")
	for _, issue := range issues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}
	b.WriteString("\n**Sugestão:** Verifique os dados e tente novamente.")
	return mcp.NewToolResultError(b.String())
}

// formatAPIError categorizes upstream failure text into a cause and a
// suggestion. Matching is textual because the upstream has no structured
// error codes.
func formatAPIError(message, action string) *mcp.CallToolResult {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "token") || strings.Contains(lower, "unauthorized") {
		return formatError(action,
			"Token de autenticação inválido ou expirado",
			"Verifique se o token da API está configurado corretamente no arquivo .env")
	}

	if strings.Contains(lower, "email") && strings.Contains(lower, "existe") {
		return formatError(action,
			"Email já existe na base de dados",
			"Use um email diferente ou atualize o lead existente")
	}

	if strings.Contains(lower, "máquina") || strings.Contains(lower, "machine") {
		return formatError(action,
			"Código da máquina inválido",
			"Verifique se o código da máquina existe em sua conta LeadLovers")
	}

	if strings.Contains(lower, "sequência") || strings.Contains(lower, "sequence") {
		return formatError(action,
			"Código da sequência de email inválido",
			"Verifique se a sequência existe na máquina especificada")
	}

	return formatError(action, message, "Verifique os dados fornecidos e tente novamente")
}
