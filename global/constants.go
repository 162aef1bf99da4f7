/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package global

const (
	// MCP Tool Names - Leads
	ToolGetLeads   = "get_leads"
	ToolCreateLead = "create_lead"
	ToolUpdateLead = "update_lead"
	ToolDeleteLead = "delete_lead"

	// MCP Tool Names - Machines
	ToolGetMachines       = "get_machines"
	ToolGetMachineDetails = "get_machine_details"

	// MCP Tool Names - Email Sequences
	ToolGetEmailSequences = "get_email_sequences"

	// MCP Tool Names - Email Marketing
	ToolCreateEmailContent = "create_email_content"

	// Cache key prefixes (shared between gateway processes)
	CacheKeyConnection          = "connection:"
	CacheKeyConversation        = "conversation:"
	CacheKeyConversationPrompts = "conversation:prompts:"

	// WebSocket event names
	EventSendPrompt     = "send-prompt"
	EventPromptResponse = "prompt-response"

	// Log Levels
	LogLevelDebug = "DEBUG"
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
	LogLevelFatal = "FATAL"

	// Default Values
	DefaultToolTimeout       = 30   // seconds, per MCP tool call
	DefaultConnectionTTL     = 3600 // seconds, registry entry lifetime
	DefaultConversationTTL   = 86400
	DefaultTranscriptMaxSize = 32 * 1024 // bytes kept per conversation transcript
	DefaultMaxBulkOperations = 50
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 900000 // milliseconds

	// Limits: upstream retries (idempotent GET requests only, no retry on writes)
	DefaultMaxRetries = 3
	MaxRetriesLimit   = 10
)
