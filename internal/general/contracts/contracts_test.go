package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"ride-share/internal/domain/notification"
)

func TestNotificationMessageRoundTrip(t *testing.T) {
	n := notification.Notification{
		Recipient: "passenger-1",
		Type:      notification.TypeBookingApproved,
		Title:     "Booking approved",
		Message:   "Your booking of 2 seats was approved",
		Resource:  notification.Resource{Kind: "booking", ID: "b-1"},
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	msg := NewNotificationMessage(n, Envelope{CorrelationID: "req-1", Producer: ProducerBookingService})

	if msg.RoutingKey() != "notification.booking_approved" {
		t.Fatalf("unexpected routing key %s", msg.RoutingKey())
	}

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded NotificationMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := decoded.Notification()
	if decoded.CorrelationID != "req-1" || got.Recipient != n.Recipient || got.Type != n.Type ||
		got.Resource != n.Resource || !got.CreatedAt.Equal(n.CreatedAt) {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}

	ws := NewWSNotification(decoded)
	if ws.Type != "notification" || ws.Kind != "booking_approved" || ws.ResourceID != "b-1" {
		t.Fatalf("unexpected ws frame %+v", ws)
	}
}
