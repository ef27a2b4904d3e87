// Package kafka streams raised notifications to a Kafka topic for auditing and analytics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ride-share/internal/domain/notification"
	"ride-share/internal/ports"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "booking-events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink writes each notification as a JSON message keyed by recipient, so one user's
// notifications stay ordered within a partition.
type Sink struct {
	writer  messageWriter
	timeout time.Duration
}

func NewSink(brokers []string, topic string) *Sink {
	if topic == "" {
		topic = DefaultTopic
	}
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Sink{writer: w, timeout: 2 * time.Second}
}

func (s *Sink) Raise(ctx context.Context, n notification.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("kafka: encode notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Recipient),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
		Time: n.CreatedAt,
	}); err != nil {
		return fmt.Errorf("kafka: write %s: %w", n.Type, err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}

var _ ports.NotificationSink = (*Sink)(nil)
