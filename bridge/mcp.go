/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package bridge

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// MCPSession drives the MCP tool server over stdio. The server process is
// spawned on first use and kept alive until Close.
type MCPSession struct {
	command string
	logger  *logging.Logger

	mu     sync.Mutex
	client *client.Client
	tools  []ToolDescriptor
}

// NewMCPSession prepares a session for the given server command. The
// command string may carry arguments separated by spaces.
func NewMCPSession(command string, logger *logging.Logger) *MCPSession {
	return &MCPSession{command: command, logger: logger}
}

// connect spawns the server process and performs the initialize handshake.
// Caller holds s.mu.
func (s *MCPSession) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	parts := strings.Fields(s.command)
	if len(parts) == 0 {
		return fmt.Errorf("no MCP server command configured")
	}

	c, err := client.NewStdioMCPClient(parts[0], os.Environ(), parts[1:]...)
	if err != nil {
		return fmt.Errorf("failed to start MCP server %q: %w", parts[0], err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    global.ServerName + "-client",
		Version: global.Version,
	}
	if _, err := c.Initialize(ctx, initRequest); err != nil {
		_ = c.Close()
		return fmt.Errorf("MCP initialize failed: %w", err)
	}

	listResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("MCP list tools failed: %w", err)
	}

	tools := make([]ToolDescriptor, 0, len(listResult.Tools))
	names := make([]string, 0, len(listResult.Tools))
	for _, tool := range listResult.Tools {
		tools = append(tools, ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
		names = append(names, tool.Name)
	}

	s.logger.Infof("Connected to MCP server with tools: %s", strings.Join(names, ", "))
	s.client = c
	s.tools = tools
	return nil
}

// Tools returns the server's tool list, connecting on first call.
func (s *MCPSession) Tools(ctx context.Context) ([]ToolDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(ctx); err != nil {
		return nil, err
	}
	return s.tools, nil
}

// Call invokes one tool on the server.
func (s *MCPSession) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return s.client.CallTool(ctx, request)
}

// Close terminates the server process.
func (s *MCPSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	s.tools = nil
	return err
}
