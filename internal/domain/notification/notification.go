package notification

import (
	"strings"
	"time"

	"ride-share/internal/domain/apperr"
)

// Type is the notification type tag understood by clients.
type Type string

const (
	TypeBookingRequest     Type = "booking_request"
	TypeBookingApproved    Type = "booking_approved"
	TypeBookingRejected    Type = "booking_rejected"
	TypeBookingCancelled   Type = "booking_cancelled"
	TypeSystemNotification Type = "system_notification"
	TypeRideStarted        Type = "ride_started"
	TypeRideCompleted      Type = "ride_completed"
	TypeNewRating          Type = "new_rating"
)

// String returns the string representation of the Type.
func (t Type) String() string {
	return string(t)
}

// Resource points at the entity a notification is about.
type Resource struct {
	Kind string `json:"kind"` // ride | booking | rating
	ID   string `json:"id"`
}

// Notification is a message addressed to one user.
type Notification struct {
	Recipient string    `json:"recipient"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Resource  Resource  `json:"resource"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrRecipientRequired = apperr.New(apperr.KindInvalidInput, "NOTIFICATION_RECIPIENT_REQUIRED", "notification recipient is required")

// Validate checks the notification can be delivered.
func (n Notification) Validate() error {
	if strings.TrimSpace(n.Recipient) == "" {
		return ErrRecipientRequired
	}
	return nil
}
