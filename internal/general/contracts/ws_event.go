package contracts

import "time"

// WSNotification mirrors "notification" messages pushed to a connected user.
type WSNotification struct {
	Type         string    `json:"type"` // "notification"
	Kind         string    `json:"kind"` // notification type tag
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	ResourceKind string    `json:"resource_kind,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Envelope
}

// NewWSNotification builds the websocket frame for a consumed notification message.
func NewWSNotification(m NotificationMessage) WSNotification {
	return WSNotification{
		Type:         "notification",
		Kind:         m.Type,
		Title:        m.Title,
		Message:      m.Message,
		ResourceKind: m.ResourceKind,
		ResourceID:   m.ResourceID,
		CreatedAt:    m.CreatedAt,
		Envelope:     m.Envelope,
	}
}
