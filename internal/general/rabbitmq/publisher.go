package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ride-share/internal/domain/notification"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publisher is the part of Client the notification sink needs.
type publisher interface {
	PublishMessage(ctx context.Context, exchange, routingKey string, body []byte) error
}

// NotificationSink publishes notifications to the notification topic exchange.
type NotificationSink struct {
	client publisher
	now    func() time.Time
}

// NewNotificationSink constructs a NotificationSink using the provided RabbitMQ client.
func NewNotificationSink(client *Client) *NotificationSink {
	return &NotificationSink{client: client, now: time.Now}
}

// Raise publishes n under "notification.{type}". The request id travels as correlation id.
func (sink *NotificationSink) Raise(ctx context.Context, n notification.Notification) error {
	msg := contracts.NewNotificationMessage(n, contracts.Envelope{
		CorrelationID: logger.RequestID(ctx),
		Producer:      contracts.ProducerBookingService,
		SentAt:        sink.now().UTC(),
	})
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("rabbitmq: encode notification: %w", err)
	}
	return sink.client.PublishMessage(ctx, contracts.ExchangeNotificationTopic, msg.RoutingKey(), body)
}

var _ ports.NotificationSink = (*NotificationSink)(nil)

// PublishMessage publishes JSON messages with persistence and waits for the broker confirm.
func (client *Client) PublishMessage(ctx context.Context, exchange, routingKey string, body []byte) error {
	client.mu.RLock()
	ch := client.pubChan
	conn := client.conn
	client.mu.RUnlock()

	// quick fail if no channel
	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	client.pubMu.Lock()
	defer client.pubMu.Unlock()
	confirms := client.pubConfirms

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(ctx, exchange, routingKey, true /* mandatory */, false, /* immediate */
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		return err
	}

	select {
	case c, ok := <-confirms:
		if !ok {
			return errors.New("rabbitmq: confirm stream closed")
		}
		if !c.Ack {
			return fmt.Errorf("rabbitmq: publish not acknowledged")
		}
	case <-ctx.Done():
		// keep the confirm stream aligned: try to consume exactly one confirm even if we return a timeout to the caller
		select {
		case c := <-confirms:
			if !c.Ack {
				return fmt.Errorf("rabbitmq: publish not acknowledged after timeout")
			}
		case <-time.After(2 * time.Second):
		}
		return ctx.Err()
	}

	return nil
}
