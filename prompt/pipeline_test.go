/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package prompt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leadlovers/leadlovers-mcp/bridge"
	"github.com/leadlovers/leadlovers-mcp/cache"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

type fakeProvider struct {
	reply   bridge.Reply
	err     error
	queries []string
}

func (f *fakeProvider) ProcessQuery(ctx context.Context, query string) (bridge.Reply, error) {
	f.queries = append(f.queries, query)
	return f.reply, f.err
}

func (f *fakeProvider) Close() error { return nil }

func successReply(text string) bridge.Reply {
	return bridge.Reply{Status: bridge.StatusSuccess, Result: []byte(`"` + text + `"`)}
}

func newPipeline(t *testing.T, store cache.Store, provider bridge.Provider) *Pipeline {
	t.Helper()
	conversations := NewConversations(store, time.Hour, 0, logging.New())
	return NewPipeline(conversations, provider, logging.New())
}

func validRequest(prompt string) Request {
	return Request{Prompt: prompt, UserID: "42", UserEmail: "ana@example.com", UserName: "Ana"}
}

func TestProcessAccumulatesTranscript(t *testing.T) {
	store := cache.NewMemoryStore()
	provider := &fakeProvider{reply: successReply("ok")}
	p := newPipeline(t, store, provider)
	ctx := context.Background()

	if reply := p.Process(ctx, validRequest("primeira pergunta")); reply.Status != bridge.StatusSuccess {
		t.Fatalf("first reply = %+v", reply)
	}
	if reply := p.Process(ctx, validRequest("segunda pergunta")); reply.Status != bridge.StatusSuccess {
		t.Fatalf("second reply = %+v", reply)
	}

	if len(provider.queries) != 2 {
		t.Fatalf("provider called %d times", len(provider.queries))
	}
	if provider.queries[0] != "primeira pergunta" {
		t.Errorf("first query = %q", provider.queries[0])
	}
	if provider.queries[1] != "primeira pergunta\nsegunda pergunta" {
		t.Errorf("second query = %q, want accumulated transcript", provider.queries[1])
	}
}

func TestProcessReusesConversationID(t *testing.T) {
	store := cache.NewMemoryStore()
	p := newPipeline(t, store, &fakeProvider{reply: successReply("ok")})
	ctx := context.Background()

	p.Process(ctx, validRequest("oi"))
	first, err := store.Get(ctx, "conversation:42")
	if err != nil {
		t.Fatalf("conversation id not stored: %v", err)
	}

	p.Process(ctx, validRequest("de novo"))
	second, _ := store.Get(ctx, "conversation:42")
	if first != second {
		t.Errorf("conversation id changed between prompts: %q vs %q", first, second)
	}
}

func TestProcessValidation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty prompt", Request{UserID: "42", UserEmail: "a@b.c", UserName: "Ana"}},
		{"prompt too long", validRequest(strings.Repeat("x", MaxPromptLength+1))},
		{"missing user id", Request{Prompt: "oi", UserEmail: "a@b.c", UserName: "Ana"}},
		{"bad email", Request{Prompt: "oi", UserID: "42", UserEmail: "not-an-email", UserName: "Ana"}},
		{"missing name", Request{Prompt: "oi", UserID: "42", UserEmail: "a@b.c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{reply: successReply("ok")}
			p := newPipeline(t, cache.NewMemoryStore(), provider)

			reply := p.Process(context.Background(), tt.req)
			if reply.Status != bridge.StatusError {
				t.Errorf("Status = %q, want error", reply.Status)
			}
			if len(provider.queries) != 0 {
				t.Error("invalid request must not reach the provider")
			}
		})
	}
}

func TestProcessProviderFailureBecomesErrorReply(t *testing.T) {
	p := newPipeline(t, cache.NewMemoryStore(), &fakeProvider{err: context.DeadlineExceeded})

	reply := p.Process(context.Background(), validRequest("oi"))
	if reply.Status != bridge.StatusError {
		t.Errorf("Status = %q, want error", reply.Status)
	}
	if !strings.Contains(string(reply.Result), "Failed to process prompt") {
		t.Errorf("Result = %s", reply.Result)
	}
}

func TestTrimTranscriptDropsOldestFirst(t *testing.T) {
	transcript := "linha-um\nlinha-dois\nlinha-tres"

	got := trimTranscript(transcript, len(transcript))
	if got != transcript {
		t.Errorf("transcript within cap must not be trimmed")
	}

	got = trimTranscript(transcript, len("linha-dois\nlinha-tres"))
	if got != "linha-dois\nlinha-tres" {
		t.Errorf("trim = %q", got)
	}

	// A single oversized line keeps its tail
	got = trimTranscript(strings.Repeat("a", 100), 10)
	if len(got) != 10 {
		t.Errorf("oversized line trimmed to %d bytes, want 10", len(got))
	}
}
