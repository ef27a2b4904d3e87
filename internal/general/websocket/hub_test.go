package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ride-share/internal/domain/user"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*Hub, *jwt.Manager, string) {
	t.Helper()
	mgr := jwt.NewManager("test-secret", time.Hour)
	hub := NewHub(logger.Discard(), mgr)
	srv := httptest.NewServer(http.HandlerFunc(hub.Connect))
	t.Cleanup(srv.Close)
	return hub, mgr, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func token(t *testing.T, mgr *jwt.Manager, userID string) string {
	t.Helper()
	raw, _, err := mgr.IssueUserToken(userID, user.RolePassenger, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return raw
}

func waitConnected(t *testing.T, hub *Hub, userID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Connected(userID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d sockets for %s, got %d", n, userID, hub.Connected(userID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readType(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestAuthFrameAndPush(t *testing.T) {
	hub, mgr, url := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(jwt.AuthFrame{Type: "auth", Token: "Bearer " + token(t, mgr, "p-1")}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readType(t, conn); msg["type"] != "auth_success" || msg["user_id"] != "p-1" {
		t.Fatalf("unexpected auth reply %v", msg)
	}
	waitConnected(t, hub, "p-1", 1)

	n, err := hub.Push(context.Background(), "p-1", contracts.WSNotification{
		Type: "notification", Kind: "booking_approved", Title: "Booking approved", ResourceID: "b-1",
	})
	if err != nil || n != 1 {
		t.Fatalf("push: n=%d err=%v", n, err)
	}
	msg := readType(t, conn)
	if msg["kind"] != "booking_approved" || msg["resource_id"] != "b-1" {
		t.Fatalf("unexpected notification %v", msg)
	}

	// offline recipients are skipped silently
	if n, err := hub.Push(context.Background(), "nobody", contracts.WSNotification{}); err != nil || n != 0 {
		t.Fatalf("offline push: n=%d err=%v", n, err)
	}
}

func TestHeaderAuthAndDisconnect(t *testing.T) {
	hub, mgr, url := newTestServer(t)

	header := http.Header{"Authorization": []string{"Bearer " + token(t, mgr, "p-2")}}
	first, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	second, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer second.Close()
	readType(t, first)
	readType(t, second)
	waitConnected(t, hub, "p-2", 2)

	_ = first.Close()
	waitConnected(t, hub, "p-2", 1)

	if err := hub.Deliver(context.Background(), contracts.NotificationMessage{Recipient: "p-2", Type: "ride_cancelled"}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if msg := readType(t, second); msg["kind"] != "ride_cancelled" {
		t.Fatalf("unexpected notification %v", msg)
	}
}

func TestRejectsBadToken(t *testing.T) {
	hub, _, url := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.WriteJSON(jwt.AuthFrame{Type: "auth", Token: "Bearer nope"})
	if msg := readType(t, conn); msg["type"] != "auth_error" {
		t.Fatalf("expected auth_error, got %v", msg)
	}

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": []string{"Bearer nope"}})
	if err == nil {
		t.Fatal("expected the upgrade to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
	if hub.Connected("") != 0 {
		t.Fatal("nothing should be registered")
	}
}
