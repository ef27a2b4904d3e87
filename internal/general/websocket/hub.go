// Package websocket delivers notifications to connected users over long-lived sockets.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ride-share/internal/general/contracts"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/observability"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	authTimeout      = 10 * time.Second
	readIdle         = 60 * time.Second
	pingEvery        = 30 * time.Second
)

// session wraps one socket; gorilla connections allow a single concurrent writer.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) write(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *session) writeJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.write(payload)
}

func (s *session) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}

func (s *session) close(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(wsCloseAckWindow))
}

// Hub keeps every open notification socket keyed by user id. A user may hold
// several sockets (one per device); pushes go to all of them.
type Hub struct {
	logger *logger.Logger
	jwtMgr *jwt.Manager

	upgrader websocket.Upgrader

	mu    sync.RWMutex
	users map[string]map[*session]struct{}
}

func NewHub(log *logger.Logger, jwtMgr *jwt.Manager) *Hub {
	return &Hub{
		logger: log,
		jwtMgr: jwtMgr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		users: make(map[string]map[*session]struct{}),
	}
}

func (h *Hub) add(userID string, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.users[userID]
	if !ok {
		set = make(map[*session]struct{})
		h.users[userID] = set
	}
	set[s] = struct{}{}
	observability.WSConnections.Inc()
}

func (h *Hub) remove(userID string, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.users[userID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.users, userID)
	}
	observability.WSConnections.Dec()
}

// Connected reports how many sockets the user currently holds.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Push writes msg to every socket of userID and returns how many received it.
// An offline user is not an error: notifications are best effort.
func (h *Hub) Push(ctx context.Context, userID string, msg contracts.WSNotification) (int, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("websocket: encode notification: %w", err)
	}

	h.mu.RLock()
	targets := make([]*session, 0, len(h.users[userID]))
	for s := range h.users[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		observability.WSPushedTotal.WithLabelValues("offline").Inc()
		h.logger.Debug(ctx, "ws_push_offline", "Recipient has no open socket", map[string]any{
			"user_id": userID,
			"kind":    msg.Kind,
		})
		return 0, nil
	}

	delivered := 0
	for _, s := range targets {
		if err := s.write(payload); err != nil {
			observability.WSPushedTotal.WithLabelValues("failed").Inc()
			h.logger.Error(ctx, "ws_push_failed", "Failed to write notification", err, map[string]any{
				"user_id": userID,
				"kind":    msg.Kind,
			})
			// the read loop notices the closed socket and unregisters it
			_ = s.conn.Close()
			continue
		}
		delivered++
		observability.WSPushedTotal.WithLabelValues("delivered").Inc()
	}
	if delivered == 0 {
		// every socket broke mid-write; the client is likely reconnecting
		return 0, fmt.Errorf("websocket: push to %s: %w", userID, contracts.ErrRetryLater)
	}
	return delivered, nil
}

// Deliver adapts the hub to the notification queue consumer.
func (h *Hub) Deliver(ctx context.Context, m contracts.NotificationMessage) error {
	_, err := h.Push(ctx, m.Recipient, contracts.NewWSNotification(m))
	return err
}

// CloseAll sends a going-away frame to every socket. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	all := make([]*session, 0)
	for _, set := range h.users {
		for s := range set {
			all = append(all, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range all {
		s.close(websocket.CloseGoingAway, "server shutting down")
		_ = s.conn.Close()
	}
}
