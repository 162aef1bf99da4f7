/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package gateway exposes the client-facing surface: a session endpoint
// that exchanges SSO credentials for internal tokens, a health endpoint,
// and the authenticated websocket that carries prompts to the AI bridge.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/leadlovers/leadlovers-mcp/cache"
	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/identity"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/prompt"
)

// Server is the websocket gateway.
type Server struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *Registry
	tokens   *identity.TokenService
	sessions *identity.SessionService
	pipeline *prompt.Pipeline
	limiters *userLimiters

	mu      sync.Mutex
	sockets map[string]*client // socketID -> live local connection

	started time.Time
}

// New wires the gateway around its collaborators. The cache store and the
// bridge provider inside pipeline are owned by the caller.
func New(
	cfg *config.Config,
	logger *logging.Logger,
	store cache.Store,
	tokens *identity.TokenService,
	sessions *identity.SessionService,
	pipeline *prompt.Pipeline,
) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: NewRegistry(store, cfg.ConnectionTTL(), logger),
		tokens:   tokens,
		sessions: sessions,
		pipeline: pipeline,
		limiters: newUserLimiters(cfg.RateLimitRequests(), cfg.RateLimitWindow()),
		sockets:  make(map[string]*client),
		started:  time.Now(),
	}
}

// Handler builds the HTTP mux: sessions, health, websocket upgrade.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Run serves until a shutdown signal arrives, then drains with a timeout.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.cfg.GatewayAddr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	s.logger.Infof("Gateway listening on %s", s.cfg.GatewayAddr())

	select {
	case <-sigChan:
		s.logger.Info("Shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Warnf("Forced shutdown: %v", err)
		}
		s.closeAllSockets()
		return nil

	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// apiResponse is the envelope every HTTP endpoint answers with.
type apiResponse struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}

func writeJSON(w http.ResponseWriter, code int, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

type createSessionRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Status: "error", Result: "Invalid request body"})
		return
	}
	if req.Token == "" || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Status: "error", Result: "token and refreshToken are required"})
		return
	}

	session, err := s.sessions.Create(r.Context(), req.Token, req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrSSOAuthFailed) {
			writeJSON(w, http.StatusUnauthorized, apiResponse{Status: "error", Result: "Authentication failed"})
			return
		}
		s.logger.Errorf("Session creation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Status: "error", Result: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, apiResponse{Status: "success", Result: session})
}

type serverInfo struct {
	Version   string  `json:"version"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "available",
		"serverInfo": serverInfo{
			Version:   global.Version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(s.started).Seconds(),
		},
	})
}
