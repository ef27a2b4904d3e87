package contracts

import (
	"time"

	"ride-share/internal/domain/notification"
)

// NotificationMessage is published by the booking service for every raised notification.
// Routing key: "notification.{type}" on ExchangeNotificationTopic.
type NotificationMessage struct {
	Recipient    string    `json:"recipient"`
	Type         string    `json:"type"` // booking_request|booking_approved|...|new_rating
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	ResourceKind string    `json:"resource_kind,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Envelope
}

// RoutingKey is the topic key the message is published under.
func (m NotificationMessage) RoutingKey() string {
	return RouteNotificationPrefix + m.Type
}

// NewNotificationMessage copies a domain notification into its wire form.
func NewNotificationMessage(n notification.Notification, env Envelope) NotificationMessage {
	return NotificationMessage{
		Recipient:    n.Recipient,
		Type:         n.Type.String(),
		Title:        n.Title,
		Message:      n.Message,
		ResourceKind: n.Resource.Kind,
		ResourceID:   n.Resource.ID,
		CreatedAt:    n.CreatedAt,
		Envelope:     env,
	}
}

// Notification converts the wire form back into a domain notification.
func (m NotificationMessage) Notification() notification.Notification {
	return notification.Notification{
		Recipient: m.Recipient,
		Type:      notification.Type(m.Type),
		Title:     m.Title,
		Message:   m.Message,
		Resource:  notification.Resource{Kind: m.ResourceKind, ID: m.ResourceID},
		CreatedAt: m.CreatedAt,
	}
}
