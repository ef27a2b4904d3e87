package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"ride-share/internal/general/jwt"

	"github.com/gorilla/websocket"
)

// Connect upgrades GET /ws/notifications. The client authenticates either with
// the Authorization header or query parameter, or by sending
// {"type":"auth","token":"Bearer <jwt>"} as its first frame.
func (h *Hub) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var claims *jwt.Claims
	if raw, err := jwt.FromAuthorization(r); err == nil {
		cl, err := h.jwtMgr.Verify(raw)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		claims = cl
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(ctx, "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	defer conn.Close()
	s := &session{conn: conn}

	conn.SetReadLimit(1 << 16)

	if claims == nil {
		_ = conn.SetReadDeadline(time.Now().Add(authTimeout))
		mt, first, err := conn.ReadMessage()
		if err != nil {
			h.logger.Error(ctx, "ws_auth_read_failed", "Client did not authenticate", err, nil)
			_ = s.writeJSON(authReply{Type: "auth_error", Error: "authentication timeout"})
			return
		}
		if mt != websocket.TextMessage {
			_ = s.writeJSON(authReply{Type: "auth_error", Error: "auth message must be text"})
			return
		}
		cl, err := jwt.ValidateWSAuth(first, h.jwtMgr)
		if err != nil {
			h.logger.Error(ctx, "ws_auth_failed", "Invalid auth message or token", err, nil)
			_ = s.writeJSON(authReply{Type: "auth_error", Error: "authentication failed"})
			return
		}
		claims = cl
	}

	userID := claims.Subject
	if err := s.writeJSON(authReply{Type: "auth_success", Success: true, UserID: userID, Timestamp: time.Now().UTC()}); err != nil {
		h.logger.Error(ctx, "ws_auth_success_failed", "Failed to acknowledge authentication", err, nil)
		return
	}

	h.add(userID, s)
	defer h.remove(userID, s)
	h.logger.Info(ctx, "ws_connected", "Notification socket connected", map[string]any{"user_id": userID})

	_ = conn.SetReadDeadline(time.Now().Add(readIdle))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readIdle))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := s.ping(); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error(ctx, "ws_unexpected_close", "Notification socket closed unexpectedly", err, map[string]any{"user_id": userID})
			} else {
				h.logger.Info(ctx, "ws_connection_closed", "Notification socket closed", map[string]any{"user_id": userID})
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readIdle))

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = s.write([]byte(`{"type":"error","error":"bad json"}`))
			continue
		}
		switch msg.Type {
		case "ping":
			_ = s.write([]byte(`{"type":"pong"}`))
		default:
			_ = s.write([]byte(`{"type":"error","error":"unknown message type"}`))
		}
	}
}

type authReply struct {
	Type      string    `json:"type"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
