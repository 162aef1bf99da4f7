/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package cache provides the shared key/value store behind the connection
// registry and conversation state. The store is constructed explicitly and
// injected; lifecycle belongs to whoever built it.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Store is the cache surface the gateway and prompt pipeline consume.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key unconditionally.
	Delete(ctx context.Context, key string) error

	// DeleteIfEquals removes key only if it still holds value, atomically.
	// Reports whether a deletion happened. A stale owner's teardown must
	// not erase an entry that has since been overwritten.
	DeleteIfEquals(ctx context.Context, key, value string) (bool, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
