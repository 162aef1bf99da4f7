/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package bridge connects the gateway's prompt pipeline to the AI model and
// the MCP tool server. A provider sends the user's query to the model with
// the server's tools attached, executes any tool call the model makes, and
// folds the tool output back into a single reply.
package bridge

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// Reply statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Reply is the outcome sent back over the websocket. Result is either a
// JSON string (model or tool text) or the parsed resource document a tool
// returned.
type Reply struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// Provider processes a user query end to end.
type Provider interface {
	ProcessQuery(ctx context.Context, query string) (Reply, error)
	Close() error
}

// ToolDescriptor is a tool advertised by the MCP server, in the shape the
// AI chat API wants it.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema any
}

// ToolSession is the MCP surface a provider drives.
type ToolSession interface {
	Tools(ctx context.Context) ([]ToolDescriptor, error)
	Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
	Close() error
}

func textResult(text string) json.RawMessage {
	raw, err := json.Marshal(text)
	if err != nil {
		return json.RawMessage(`"result encoding failed"`)
	}
	return raw
}

// foldToolResult merges one tool call's content into the reply. Text
// content carries the tool's rendered message; an embedded resource carries
// a JSON document whose isSuccess field, when present, decides the status.
func foldToolResult(result *mcp.CallToolResult, reply *Reply) {
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			if result.IsError {
				reply.Status = StatusError
			} else {
				reply.Status = StatusSuccess
			}
			reply.Result = textResult(c.Text)

		case mcp.EmbeddedResource:
			text, ok := c.Resource.(mcp.TextResourceContents)
			if !ok {
				continue
			}
			reply.Status = resourceStatus(text.Text)
			if json.Valid([]byte(text.Text)) {
				reply.Result = json.RawMessage(text.Text)
			} else {
				reply.Result = textResult(text.Text)
			}
		}
	}
}

// resourceStatus reads the isSuccess flag from a resource document. A
// document without the flag counts as success; failures arrive as text
// content, not resources.
func resourceStatus(text string) string {
	var envelope struct {
		IsSuccess *bool `json:"isSuccess"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return StatusError
	}
	if envelope.IsSuccess != nil && !*envelope.IsSuccess {
		return StatusError
	}
	return StatusSuccess
}
