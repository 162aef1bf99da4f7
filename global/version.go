/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package global

const (
	// ServerName is the MCP server identity announced on the transport
	ServerName = "leadlovers-mcp-server"

	// GatewayName identifies the client gateway process
	GatewayName = "leadlovers-mcp-gateway"

	// Version is the current version of the application
	Version = "1.0.0"
)
