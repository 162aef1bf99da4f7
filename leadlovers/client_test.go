/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package leadlovers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

func newTestClient(t *testing.T, serverURL string, maxRetries int) *Client {
	t.Helper()
	t.Setenv("LEADLOVERS_API_URL", serverURL)
	t.Setenv("LEADLOVERS_API_TOKEN", "test-token")
	if maxRetries > 0 {
		t.Setenv("MAX_RETRIES", strconv.Itoa(maxRetries))
	} else {
		t.Setenv("MAX_RETRIES", "1")
	}
	cfg := config.New()
	if err := cfg.Load(); err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return NewClient(cfg, logging.New())
}

func TestGetInjectsCredential(t *testing.T) {
	var gotAuth, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotToken = r.URL.Query().Get("token")
		w.Write([]byte(`{"Items":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	resp := client.Get(context.Background(), "/Machines", url.Values{"page": {"0"}})

	if !resp.IsSuccess {
		t.Fatalf("expected success, got %+v", resp)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization header = %q, want bearer token", gotAuth)
	}
	if gotToken != "test-token" {
		t.Errorf("token query param = %q, want test-token", gotToken)
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"Message":"Token inválido"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	resp := client.Get(context.Background(), "/Leads", nil)

	if resp.IsSuccess {
		t.Error("401 must not be a success")
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("4xx was retried %d times, want a single attempt", got)
	}
}

func TestServerErrorRetriesUpToBound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)
	resp := client.Get(context.Background(), "/Machines", nil)

	if resp.IsSuccess {
		t.Error("persistent 502 must end in failure")
	}
	if got := calls.Load(); got != 3 { // initial attempt + 2 retries
		t.Errorf("made %d attempts, want 3", got)
	}
}

func TestRetryRecoversAfterTransientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"Items":[{"SequenceCode":101,"SequenceName":"Welcome Series"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)
	resp := client.Get(context.Background(), "/EmailSequences", nil)

	if !resp.IsSuccess {
		t.Fatalf("expected recovery on second attempt, got %+v", resp)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("made %d attempts, want 2", got)
	}
}

func TestMutatingVerbsNeverRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	resp := client.Post(context.Background(), "/Lead", map[string]any{"Email": "a@b.c"})

	if resp.IsSuccess {
		t.Error("500 must not be a success")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("POST made %d attempts, want 1", got)
	}
}

func TestNonJSONBodyIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>Bad Gateway</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	resp := client.Get(context.Background(), "/Leads", nil)

	if resp.IsSuccess {
		t.Error("non-JSON body must not be a success")
	}
	if resp.Err == "" {
		t.Error("expected a classification message")
	}
}

func TestCancelledContextStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, srv.URL, 3)
	resp := client.Get(ctx, "/Machines", nil)

	if resp.IsSuccess {
		t.Error("cancelled request must fail")
	}
}
