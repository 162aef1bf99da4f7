/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leadlovers/leadlovers-mcp/cache"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// Registry tracks the single active socket per user in the shared cache.
// The newest connection always wins; teardown uses compare-and-delete so a
// stale socket cannot erase its successor's entry.
type Registry struct {
	store  cache.Store
	ttl    time.Duration
	logger *logging.Logger
}

// NewRegistry creates a registry over the shared cache.
func NewRegistry(store cache.Store, ttl time.Duration, logger *logging.Logger) *Registry {
	return &Registry{store: store, ttl: ttl, logger: logger}
}

func connectionKey(userID string) string {
	return global.CacheKeyConnection + userID
}

// Current returns the user's registered socket id, empty when none.
func (r *Registry) Current(ctx context.Context, userID string) (string, error) {
	socketID, err := r.store.Get(ctx, connectionKey(userID))
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read connection registry: %w", err)
	}
	return socketID, nil
}

// Register records socketID as the user's active connection and returns
// the socket id it displaced, if any.
func (r *Registry) Register(ctx context.Context, userID, socketID string) (string, error) {
	previous, err := r.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := r.store.Set(ctx, connectionKey(userID), socketID, r.ttl); err != nil {
		return "", fmt.Errorf("failed to register connection: %w", err)
	}
	if previous != "" && previous != socketID {
		r.logger.Infof("Displacing existing connection for user %s (socket: %s)", userID, previous)
		return previous, nil
	}
	return "", nil
}

// Unregister removes the user's entry only if socketID still owns it.
func (r *Registry) Unregister(ctx context.Context, userID, socketID string) (bool, error) {
	deleted, err := r.store.DeleteIfEquals(ctx, connectionKey(userID), socketID)
	if err != nil {
		return false, fmt.Errorf("failed to unregister connection: %w", err)
	}
	return deleted, nil
}
