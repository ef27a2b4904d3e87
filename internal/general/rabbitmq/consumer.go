package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ride-share/internal/general/contracts"
	"ride-share/internal/general/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	handlerTimeout        = 30 * time.Second
	notificationsPrefetch = 16
)

// DeliveryHandler processes one delivery. Returning an error wrapping
// contracts.ErrRetryLater requeues a first delivery; other errors drop it.
type DeliveryHandler func(context.Context, amqp.Delivery) error

// ack outcomes, also used as metric labels
const (
	outcomeAcked    = "acked"
	outcomeRequeued = "requeued"
	outcomeDropped  = "dropped"
)

// settle decides how a handled delivery is acknowledged.
func settle(err error, redelivered bool) string {
	switch {
	case err == nil:
		return outcomeAcked
	case errors.Is(err, contracts.ErrRetryLater) && !redelivered:
		return outcomeRequeued
	default:
		return outcomeDropped
	}
}

func (client *Client) consumerChannel(prefetch int) (*amqp.Channel, error) {
	client.mu.RLock()
	conn := client.conn
	client.mu.RUnlock()
	if conn == nil || conn.IsClosed() {
		return nil, errors.New("rabbitmq: connection is not ready")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if err := ch.Qos(max(prefetch, 1), 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("rabbitmq: set QoS (prefetch=%d): %w", prefetch, err)
	}
	return ch, nil
}

// Consume reads queue with manual acks on a dedicated channel until ctx is done or the
// channel closes. A closed channel is reported as an error so callers can re-attach.
func (client *Client) Consume(ctx context.Context, queue, consumerTag string, prefetch int, handler DeliveryHandler) error {
	ch, err := client.consumerChannel(prefetch)
	if err != nil {
		return err
	}
	defer ch.Close()

	deliveries, err := ch.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume(%s): %w", queue, err)
	}
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			_ = ch.Cancel(consumerTag, false)
			return nil

		case cerr := <-chClosed:
			if cerr != nil {
				return fmt.Errorf("rabbitmq: channel closed while consuming %s: %w", queue, cerr)
			}
			return errors.New("rabbitmq: channel closed")

		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("rabbitmq: delivery stream for %s ended", queue)
			}
			client.handle(ctx, queue, d, handler)
		}
	}
}

func (client *Client) handle(ctx context.Context, queue string, d amqp.Delivery, handler DeliveryHandler) {
	hCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
	err := handler(hCtx, d)
	cancel()

	outcome := settle(err, d.Redelivered)
	observability.NotificationsConsumedTotal.WithLabelValues(outcome).Inc()

	switch outcome {
	case outcomeAcked:
		_ = d.Ack(false)
	case outcomeRequeued:
		client.logger.Debug(ctx, "rabbitmq_message_requeued", "Handler asked for a retry; message requeued", map[string]any{
			"queue": queue, "routing_key": d.RoutingKey,
		})
		_ = d.Nack(false, true)
	default:
		client.logger.Error(ctx, "rabbitmq_message_dropped", "Handler failed; message dropped", err, map[string]any{
			"queue": queue, "routing_key": d.RoutingKey, "redelivered": d.Redelivered,
		})
		_ = d.Nack(false, false)
	}
}

// ConsumeNotifications consumes the notifications queue and hands each decoded message to
// handler. Undecodable messages are dropped.
func (client *Client) ConsumeNotifications(
	ctx context.Context,
	consumerTag string,
	handler func(context.Context, contracts.NotificationMessage) error,
) error {
	return client.Consume(ctx, contracts.QueueNotifications, consumerTag, notificationsPrefetch,
		func(ctx context.Context, d amqp.Delivery) error {
			msg, err := decodeNotification(d.Body)
			if err != nil {
				return err
			}
			ctx = client.logger.WithRequestID(ctx, msg.CorrelationID)
			return handler(ctx, msg)
		})
}

func decodeNotification(body []byte) (contracts.NotificationMessage, error) {
	var msg contracts.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("rabbitmq: decode notification: %w", err)
	}
	if msg.Recipient == "" || msg.Type == "" {
		return msg, errors.New("rabbitmq: notification without recipient or type")
	}
	return msg, nil
}
