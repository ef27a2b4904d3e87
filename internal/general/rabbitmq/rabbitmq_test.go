package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"ride-share/internal/domain/notification"
	"ride-share/internal/general/config"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/logger"
)

type recordingPublisher struct {
	exchange, routingKey string
	body                 []byte
	err                  error
}

func (p *recordingPublisher) PublishMessage(_ context.Context, exchange, routingKey string, body []byte) error {
	p.exchange, p.routingKey, p.body = exchange, routingKey, body
	return p.err
}

func TestNotificationSinkRaise(t *testing.T) {
	pub := &recordingPublisher{}
	sent := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sink := &NotificationSink{client: pub, now: func() time.Time { return sent }}

	ctx := logger.Discard().WithRequestID(context.Background(), "req-42")
	n := notification.Notification{
		Recipient: "driver-1",
		Type:      notification.TypeBookingRequest,
		Title:     "New booking request",
		Resource:  notification.Resource{Kind: "booking", ID: "b-9"},
	}
	if err := sink.Raise(ctx, n); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if pub.exchange != contracts.ExchangeNotificationTopic || pub.routingKey != "notification.booking_request" {
		t.Fatalf("unexpected destination %s %s", pub.exchange, pub.routingKey)
	}

	msg, err := decodeNotification(pub.body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.CorrelationID != "req-42" || msg.Producer != contracts.ProducerBookingService || !msg.SentAt.Equal(sent) {
		t.Fatalf("unexpected envelope %+v", msg.Envelope)
	}
	if msg.ResourceID != "b-9" {
		t.Fatalf("unexpected resource %+v", msg)
	}

	pub.err = errors.New("not acknowledged")
	if err := sink.Raise(ctx, n); err == nil {
		t.Fatal("publisher errors must surface")
	}
}

func TestDecodeNotificationRejectsGarbage(t *testing.T) {
	if _, err := decodeNotification([]byte("{not json")); err == nil {
		t.Fatal("expected a decode error")
	}
	body, _ := json.Marshal(contracts.NotificationMessage{Type: "booking_request"})
	if _, err := decodeNotification(body); err == nil {
		t.Fatal("expected an error for a missing recipient")
	}
}

func TestTopologyBindsNotificationQueue(t *testing.T) {
	if len(topology.bindings) != 1 {
		t.Fatalf("expected one binding, got %d", len(topology.bindings))
	}
	b := topology.bindings[0]
	if b.queue != contracts.QueueNotifications || b.exchange != contracts.ExchangeNotificationTopic || b.routingKey != "notification.*" {
		t.Fatalf("unexpected binding %+v", b)
	}
}

func TestURLEscapesCredentials(t *testing.T) {
	var cfg config.Config
	cfg.RabbitMQ.User, cfg.RabbitMQ.Password = "guest", "p@ss/word"
	cfg.RabbitMQ.Host, cfg.RabbitMQ.Port = "mq", 5672

	if got, want := URL(&cfg), "amqp://guest:p%40ss%2Fword@mq:5672/"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestNextBackoffCaps(t *testing.T) {
	d := minBackoff
	for range 10 {
		d = nextBackoff(d)
	}
	if d != maxBackoff {
		t.Fatalf("expected %v, got %v", maxBackoff, d)
	}
	if got := nextBackoff(2 * time.Second); got != 4*time.Second {
		t.Fatalf("expected doubling, got %v", got)
	}
}

func TestSettle(t *testing.T) {
	retry := fmt.Errorf("push: %w", contracts.ErrRetryLater)
	cases := []struct {
		err         error
		redelivered bool
		want        string
	}{
		{nil, false, outcomeAcked},
		{retry, false, outcomeRequeued},
		{retry, true, outcomeDropped},
		{errors.New("bad payload"), false, outcomeDropped},
	}
	for _, tc := range cases {
		if got := settle(tc.err, tc.redelivered); got != tc.want {
			t.Errorf("settle(%v, %v) = %s, want %s", tc.err, tc.redelivered, got, tc.want)
		}
	}
}
