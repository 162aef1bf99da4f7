/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/leadlovers/leadlovers-mcp/bridge"
	"github.com/leadlovers/leadlovers-mcp/cache"
	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/identity"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/prompt"
)

type fakeSSO struct {
	user identity.User
	err  error
}

func (f *fakeSSO) ValidateToken(ctx context.Context, token, refreshToken string) (identity.User, error) {
	return f.user, f.err
}

type fakeProvider struct {
	reply bridge.Reply
}

func (f *fakeProvider) ProcessQuery(ctx context.Context, query string) (bridge.Reply, error) {
	return f.reply, nil
}

func (f *fakeProvider) Close() error { return nil }

type gatewayFixture struct {
	server *Server
	tokens *identity.TokenService
	store  *cache.MemoryStore
	http   *httptest.Server
}

func newFixture(t *testing.T, sso identity.SSOProvider, extraEnv map[string]string) *gatewayFixture {
	t.Helper()
	t.Setenv("LEADLOVERS_API_TOKEN", "test-token")
	t.Setenv("JWT_SECRET", "test-secret")
	for k, v := range extraEnv {
		t.Setenv(k, v)
	}

	cfg := config.New()
	if err := cfg.Load(); err != nil {
		t.Fatalf("config load failed: %v", err)
	}

	logger := logging.New()
	tokens, err := identity.NewTokenService(cfg.JWTSecret())
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	store := cache.NewMemoryStore()

	conversations := prompt.NewConversations(store, time.Hour, 0, logger)
	pipeline := prompt.NewPipeline(conversations, &fakeProvider{
		reply: bridge.Reply{Status: bridge.StatusSuccess, Result: []byte(`"pong"`)},
	}, logger)

	srv := New(cfg, logger, store, tokens, identity.NewSessionService(sso, tokens, logger), pipeline)
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(httpSrv.Close)

	return &gatewayFixture{server: srv, tokens: tokens, store: store, http: httpSrv}
}

func (f *gatewayFixture) sessionToken(t *testing.T, user identity.User) string {
	t.Helper()
	token, err := f.tokens.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func (f *gatewayFixture) dial(t *testing.T, ctx context.Context, header http.Header) (*websocket.Conn, *http.Response) {
	t.Helper()
	conn, resp, err := websocket.Dial(ctx, f.http.URL+"/ws", &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return conn, resp
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t, &fakeSSO{}, nil)

	resp, err := http.Get(f.http.URL + "/v1/health")
	if err != nil {
		t.Fatalf("GET /v1/health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status     string `json:"status"`
		ServerInfo struct {
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "available" || body.ServerInfo.Version == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestCreateSessionHappyPath(t *testing.T) {
	sso := &fakeSSO{user: identity.User{ID: "42", Email: "ana@example.com", Name: "Ana Souza"}}
	f := newFixture(t, sso, nil)

	resp, err := http.Post(f.http.URL+"/v1/sessions", "application/json",
		strings.NewReader(`{"token":"sso-token","refreshToken":"refresh-token"}`))
	if err != nil {
		t.Fatalf("POST /v1/sessions: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var body struct {
		Status string           `json:"status"`
		Result identity.Session `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "success" || body.Result.Email != "ana@example.com" {
		t.Errorf("body = %+v", body)
	}

	user, err := f.tokens.Verify(body.Result.Token)
	if err != nil || user.ID != "42" {
		t.Errorf("minted token Verify = (%+v, %v)", user, err)
	}
}

func TestCreateSessionRejections(t *testing.T) {
	f := newFixture(t, &fakeSSO{err: identity.ErrSSOAuthFailed}, nil)

	resp, err := http.Post(f.http.URL+"/v1/sessions", "application/json",
		strings.NewReader(`{"token":"only-token"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing refreshToken status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Post(f.http.URL+"/v1/sessions", "application/json",
		strings.NewReader(`{"token":"bad","refreshToken":"bad"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("SSO failure status = %d, want 401", resp.StatusCode)
	}
	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Result != "Authentication failed" {
		t.Errorf("result = %v, want generic message", body.Result)
	}
}

func TestWebSocketRejectsMissingAndInvalidTokens(t *testing.T) {
	f := newFixture(t, &fakeSSO{}, nil)

	for name, header := range map[string]http.Header{
		"no token":      {},
		"invalid token": {"X-Auth-Token": []string{"garbage"}},
	} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, resp, err := websocket.Dial(ctx, f.http.URL+"/ws", &websocket.DialOptions{HTTPHeader: header})
			if err == nil {
				t.Fatal("upgrade must fail")
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("handshake response = %+v, want 401", resp)
			}
		})
	}
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) (string, bridge.Reply) {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var msg envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	var reply bridge.Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		t.Fatalf("bad reply: %v", err)
	}
	return msg.Event, reply
}

func TestWebSocketPromptRoundTrip(t *testing.T) {
	f := newFixture(t, &fakeSSO{}, nil)
	token := f.sessionToken(t, identity.User{ID: "42", Email: "ana@example.com", Name: "Ana"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _ := f.dial(t, ctx, http.Header{"Authorization": []string{"Bearer " + token}})
	defer conn.Close(websocket.StatusNormalClosure, "")

	err := conn.Write(ctx, websocket.MessageText,
		[]byte(`{"event":"send-prompt","data":{"prompt":"quantos leads eu tenho?"}}`))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	event, reply := readEvent(t, ctx, conn)
	if event != "prompt-response" {
		t.Errorf("event = %q", event)
	}
	if reply.Status != bridge.StatusSuccess || string(reply.Result) != `"pong"` {
		t.Errorf("reply = %+v", reply)
	}
}

func TestNewConnectionDisplacesPrevious(t *testing.T) {
	f := newFixture(t, &fakeSSO{}, nil)
	token := f.sessionToken(t, identity.User{ID: "42", Email: "ana@example.com", Name: "Ana"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	header := http.Header{"X-Auth-Token": []string{token}}

	first, _ := f.dial(t, ctx, header)
	defer first.Close(websocket.StatusNormalClosure, "")

	second, _ := f.dial(t, ctx, header)
	defer second.Close(websocket.StatusNormalClosure, "")

	// The first socket must be force-closed by the server
	if _, _, err := first.Read(ctx); err == nil {
		t.Fatal("first connection should have been closed")
	}

	// The second socket still works
	if err := second.Write(ctx, websocket.MessageText,
		[]byte(`{"event":"send-prompt","data":{"prompt":"ainda conectado?"}}`)); err != nil {
		t.Fatalf("Write on second socket: %v", err)
	}
	if event, _ := readEvent(t, ctx, second); event != "prompt-response" {
		t.Errorf("event = %q", event)
	}

	// The registry must hold exactly one entry for the user
	if _, err := f.store.Get(context.Background(), "connection:42"); err != nil {
		t.Errorf("registry entry missing after displacement: %v", err)
	}
}

func TestRateLimiterDeniesBurst(t *testing.T) {
	f := newFixture(t, &fakeSSO{}, map[string]string{
		"RATE_LIMIT_REQUESTS":  "1",
		"RATE_LIMIT_WINDOW_MS": "60000",
	})
	token := f.sessionToken(t, identity.User{ID: "42", Email: "ana@example.com", Name: "Ana"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _ := f.dial(t, ctx, http.Header{"X-Auth-Token": []string{token}})
	defer conn.Close(websocket.StatusNormalClosure, "")

	message := []byte(`{"event":"send-prompt","data":{"prompt":"oi"}}`)
	if err := conn.Write(ctx, websocket.MessageText, message); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, reply := readEvent(t, ctx, conn); reply.Status != bridge.StatusSuccess {
		t.Fatalf("first prompt = %+v", reply)
	}

	if err := conn.Write(ctx, websocket.MessageText, message); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_, reply := readEvent(t, ctx, conn)
	if reply.Status != bridge.StatusError || !strings.Contains(string(reply.Result), "Rate limit") {
		t.Errorf("second prompt = %+v, want rate limit denial", reply)
	}
}

func TestExtractTokenPrecedence(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	r.Header.Set("Authorization", "Bearer from-bearer")
	r.Header.Set("X-Auth-Token", "from-header")

	if got := extractToken(r); got != "from-header" {
		t.Errorf("precedence 1 = %q, want from-header", got)
	}

	r.Header.Del("X-Auth-Token")
	if got := extractToken(r); got != "from-bearer" {
		t.Errorf("precedence 2 = %q, want from-bearer", got)
	}

	r.Header.Del("Authorization")
	if got := extractToken(r); got != "from-query" {
		t.Errorf("precedence 3 = %q, want from-query", got)
	}
}
