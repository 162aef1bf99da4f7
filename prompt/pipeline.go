/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package prompt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/leadlovers/leadlovers-mcp/bridge"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// MaxPromptLength bounds a single prompt; longer input is rejected before
// it reaches the AI.
const MaxPromptLength = 5000

// Request is one prompt from an authenticated user.
type Request struct {
	Prompt    string `json:"prompt"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

// Pipeline runs prompts through the conversation state and the AI bridge.
type Pipeline struct {
	conversations *Conversations
	provider      bridge.Provider
	logger        *logging.Logger
}

// NewPipeline wires conversation state and the bridge provider.
func NewPipeline(conversations *Conversations, provider bridge.Provider, logger *logging.Logger) *Pipeline {
	return &Pipeline{conversations: conversations, provider: provider, logger: logger}
}

func errorReply(message string) bridge.Reply {
	raw, _ := json.Marshal(message)
	return bridge.Reply{Status: bridge.StatusError, Result: raw}
}

func validate(req Request) string {
	switch {
	case strings.TrimSpace(req.Prompt) == "":
		return "Prompt text is required"
	case len(req.Prompt) > MaxPromptLength:
		return "Prompt text is too long"
	case req.UserID == "":
		return "User ID is required"
	case !strings.Contains(req.UserEmail, "@"):
		return "Valid email is required"
	case req.UserName == "":
		return "User name is required"
	}
	return ""
}

// Process appends the prompt to the user's conversation, dispatches the
// combined transcript to the bridge and persists the result. Failures come
// back as error replies, never as transport errors; the socket stays up.
func (p *Pipeline) Process(ctx context.Context, req Request) bridge.Reply {
	if msg := validate(req); msg != "" {
		p.logger.Errorf("Invalid prompt input from user %s: %s", req.UserID, msg)
		return errorReply(msg)
	}

	p.logger.Infof("Processing prompt for user: %s (%s, ID: %s)", req.UserName, req.UserEmail, req.UserID)

	conversationID, err := p.conversations.ID(ctx, req.UserID)
	if err != nil {
		p.logger.Errorf("Error processing prompt: %v", err)
		return errorReply("Failed to process prompt")
	}

	transcript, err := p.conversations.Transcript(ctx, req.UserID, conversationID)
	if err != nil {
		p.logger.Errorf("Error processing prompt: %v", err)
		return errorReply("Failed to process prompt")
	}

	if transcript == "" {
		transcript = req.Prompt
	} else {
		transcript += "\n" + req.Prompt
	}
	transcript = trimTranscript(transcript, p.conversations.maxBytes)

	reply, err := p.provider.ProcessQuery(ctx, transcript)
	if err != nil {
		p.logger.Errorf("Error processing prompt: %v", err)
		return errorReply("Failed to process prompt")
	}

	if err := p.conversations.SaveTranscript(ctx, req.UserID, conversationID, transcript); err != nil {
		// The reply already exists; losing one transcript update is not
		// worth failing the whole prompt.
		p.logger.Warnf("Failed to persist transcript for user %s: %v", req.UserID, err)
	}

	return reply
}
