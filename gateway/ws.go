/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/leadlovers/leadlovers-mcp/bridge"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/identity"
	"github.com/leadlovers/leadlovers-mcp/prompt"
)

const writeTimeout = 10 * time.Second

// client is one live websocket owned by this process.
type client struct {
	socketID string
	user     identity.User
	conn     *websocket.Conn
	writeMu  sync.Mutex
}

// envelope is the wire format for both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type promptData struct {
	Prompt string `json:"prompt"`
}

func (c *client) writeEvent(ctx context.Context, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	message, err := json.Marshal(envelope{Event: event, Data: raw})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, message)
}

// extractToken pulls the session token from the handshake. Precedence:
// X-Auth-Token header, Authorization bearer, token query parameter.
func extractToken(r *http.Request) string {
	if token := r.Header.Get("X-Auth-Token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		s.logger.Warnf("Connection attempt without token from %s", r.RemoteAddr)
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	user, err := s.tokens.Verify(token)
	if err != nil {
		// One generic line for every rejection; the cause stays in the log
		s.logger.Errorf("Authentication failed for %s: %v", r.RemoteAddr, err)
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{socketID: uuid.NewString(), user: user, conn: conn}
	s.logger.Infof("Client connected: %s, user: %s", c.socketID, user.Email)

	ctx := r.Context()
	if err := s.registerClient(ctx, c); err != nil {
		s.logger.Errorf("Failed to register connection for user %s: %v", user.ID, err)
		_ = conn.Close(websocket.StatusInternalError, "registration failed")
		return
	}

	s.readLoop(ctx, c)
}

// registerClient makes c the user's single active connection, force-closing
// the local socket it displaces.
func (s *Server) registerClient(ctx context.Context, c *client) error {
	s.mu.Lock()
	s.sockets[c.socketID] = c
	s.mu.Unlock()

	previous, err := s.registry.Register(ctx, c.user.ID, c.socketID)
	if err != nil {
		s.mu.Lock()
		delete(s.sockets, c.socketID)
		s.mu.Unlock()
		return err
	}

	if previous != "" {
		s.mu.Lock()
		old := s.sockets[previous]
		s.mu.Unlock()
		if old != nil {
			s.logger.Infof("Disconnecting existing connection for user %s (socket: %s)", c.user.Email, previous)
			_ = old.conn.Close(websocket.StatusPolicyViolation, "replaced by a newer connection")
		}
	}
	return nil
}

// teardown drops the local socket and clears the registry entry, but only
// if this socket still owns it.
func (s *Server) teardown(c *client, reason string) {
	s.mu.Lock()
	delete(s.sockets, c.socketID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.registry.Unregister(ctx, c.user.ID, c.socketID); err != nil {
		s.logger.Warnf("Failed to unregister socket %s: %v", c.socketID, err)
	}

	_ = c.conn.Close(websocket.StatusNormalClosure, "")
	s.logger.Infof("Client disconnected: %s, user: %s, reason: %s", c.socketID, c.user.Email, reason)
}

// readLoop handles one socket's events in order until it closes.
func (s *Server) readLoop(ctx context.Context, c *client) {
	defer s.teardown(c, "connection closed")

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}

		var msg envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warnf("Malformed message on socket %s: %v", c.socketID, err)
			continue
		}

		switch msg.Event {
		case global.EventSendPrompt:
			s.handlePrompt(ctx, c, msg.Data)
		default:
			s.logger.Warnf("Unknown event %q on socket %s", msg.Event, c.socketID)
		}
	}
}

func (s *Server) handlePrompt(ctx context.Context, c *client, data json.RawMessage) {
	var payload promptData
	if err := json.Unmarshal(data, &payload); err != nil {
		s.replyError(ctx, c, "Invalid prompt payload")
		return
	}

	if !s.limiters.allow(c.user.ID) {
		s.logger.Warnf("Rate limit exceeded for user %s", c.user.Email)
		s.replyError(ctx, c, "Rate limit exceeded, try again later")
		return
	}

	s.logger.Infof("Received prompt from user %s on socket %s", c.user.Email, c.socketID)

	reply := s.pipeline.Process(ctx, prompt.Request{
		Prompt:    payload.Prompt,
		UserID:    c.user.ID,
		UserEmail: c.user.Email,
		UserName:  c.user.Name,
	})

	if err := c.writeEvent(ctx, global.EventPromptResponse, reply); err != nil {
		s.logger.Errorf("Failed to deliver prompt response on socket %s: %v", c.socketID, err)
	}
}

func (s *Server) replyError(ctx context.Context, c *client, message string) {
	raw, _ := json.Marshal(message)
	reply := bridge.Reply{Status: bridge.StatusError, Result: raw}
	if err := c.writeEvent(ctx, global.EventPromptResponse, reply); err != nil {
		s.logger.Errorf("Failed to deliver error response on socket %s: %v", c.socketID, err)
	}
}

// closeAllSockets force-closes every live connection during shutdown.
func (s *Server) closeAllSockets() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.sockets))
	for _, c := range s.sockets {
		clients = append(clients, c)
	}
	s.sockets = make(map[string]*client)
	s.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
