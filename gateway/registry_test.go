/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/leadlovers/leadlovers-mcp/cache"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

func newRegistry() *Registry {
	return NewRegistry(cache.NewMemoryStore(), time.Hour, logging.New())
}

func TestRegisterReportsDisplacedSocket(t *testing.T) {
	ctx := context.Background()
	r := newRegistry()

	previous, err := r.Register(ctx, "42", "socket-a")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if previous != "" {
		t.Errorf("first register displaced %q, want nothing", previous)
	}

	previous, err = r.Register(ctx, "42", "socket-b")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if previous != "socket-a" {
		t.Errorf("displaced = %q, want socket-a", previous)
	}

	current, err := r.Current(ctx, "42")
	if err != nil || current != "socket-b" {
		t.Errorf("Current = (%q, %v), want socket-b", current, err)
	}
}

func TestStaleUnregisterKeepsNewerEntry(t *testing.T) {
	ctx := context.Background()
	r := newRegistry()

	if _, err := r.Register(ctx, "42", "socket-a"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := r.Register(ctx, "42", "socket-b"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// socket-a's delayed teardown fires after socket-b took over
	deleted, err := r.Unregister(ctx, "42", "socket-a")
	if err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if deleted {
		t.Error("stale teardown must not delete the newer entry")
	}

	current, err := r.Current(ctx, "42")
	if err != nil || current != "socket-b" {
		t.Errorf("Current = (%q, %v), want socket-b", current, err)
	}

	deleted, err = r.Unregister(ctx, "42", "socket-b")
	if err != nil || !deleted {
		t.Errorf("owner Unregister = (%v, %v), want (true, nil)", deleted, err)
	}
	if current, _ := r.Current(ctx, "42"); current != "" {
		t.Errorf("Current after owner teardown = %q, want empty", current)
	}
}
