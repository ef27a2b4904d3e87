package contracts

import (
	"errors"
	"time"
)

// Envelope adds cross-cutting headers all messages may carry.
type Envelope struct {
	CorrelationID string    `json:"correlation_id,omitempty"` // request id of the operation that raised the message
	Producer      string    `json:"producer,omitempty"`
	SentAt        time.Time `json:"sent_at,omitzero"`
}

// ErrRetryLater marks a consumer failure that may succeed on redelivery. Any other
// handler error drops the message.
var ErrRetryLater = errors.New("retry later")
