/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package prompt keeps per-user conversation state and runs prompts through
// the AI bridge with that state attached.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leadlovers/leadlovers-mcp/cache"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// Conversations stores conversation ids and transcripts in the shared
// cache. Both carry a TTL so abandoned conversations age out; transcripts
// are additionally capped by size, trimmed oldest-first.
type Conversations struct {
	store    cache.Store
	ttl      time.Duration
	maxBytes int
	logger   *logging.Logger
}

// NewConversations creates the conversation state service.
func NewConversations(store cache.Store, ttl time.Duration, maxBytes int, logger *logging.Logger) *Conversations {
	if maxBytes <= 0 {
		maxBytes = global.DefaultTranscriptMaxSize
	}
	return &Conversations{store: store, ttl: ttl, maxBytes: maxBytes, logger: logger}
}

// ID returns the user's current conversation id, creating one when none
// exists.
func (c *Conversations) ID(ctx context.Context, userID string) (string, error) {
	key := global.CacheKeyConversation + userID

	id, err := c.store.Get(ctx, key)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		return "", fmt.Errorf("failed to load conversation id: %w", err)
	}

	id = uuid.NewString()
	if err := c.store.Set(ctx, key, id, c.ttl); err != nil {
		return "", fmt.Errorf("failed to store conversation id: %w", err)
	}
	c.logger.Infof("Started conversation %s for user %s", id, userID)
	return id, nil
}

// Transcript returns the stored transcript for a conversation, empty when
// none exists yet.
func (c *Conversations) Transcript(ctx context.Context, userID, conversationID string) (string, error) {
	key := global.CacheKeyConversationPrompts + userID + ":" + conversationID

	transcript, err := c.store.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load transcript: %w", err)
	}
	return transcript, nil
}

// SaveTranscript persists the transcript, trimmed to the size cap.
func (c *Conversations) SaveTranscript(ctx context.Context, userID, conversationID, transcript string) error {
	key := global.CacheKeyConversationPrompts + userID + ":" + conversationID
	return c.store.Set(ctx, key, trimTranscript(transcript, c.maxBytes), c.ttl)
}

// trimTranscript drops whole lines from the front until the transcript
// fits. Oldest prompts go first; a single oversized line is cut mid-line.
func trimTranscript(transcript string, maxBytes int) string {
	if len(transcript) <= maxBytes {
		return transcript
	}

	for len(transcript) > maxBytes {
		idx := strings.IndexByte(transcript, '\n')
		if idx < 0 {
			return transcript[len(transcript)-maxBytes:]
		}
		transcript = transcript[idx+1:]
	}
	return transcript
}
