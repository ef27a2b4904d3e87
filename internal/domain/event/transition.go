package event

import (
	"encoding/json"
	"maps"
	"strings"
	"time"

	"ride-share/internal/domain/apperr"
)

// Transition is a state change on a ride, booking or rating. Lifecycle operations return
// transitions instead of performing side effects; they are appended to the `booking_events`
// audit table in the same unit of work and turned into notifications after commit.
type Transition struct {
	// Identity & audit
	ID         string
	OccurredAt time.Time

	// Core payload
	Type Type

	// Subjects
	RideID    string
	BookingID string
	RatingID  string

	// Parties
	ActorID     string
	ActorRole   string
	PassengerID string
	DriverID    string
	RateeID     string

	// Details
	Seats  int
	Reason string
	Data   map[string]any
}

var ErrRideIDRequired = apperr.New(apperr.KindInvalidInput, "EVENT_RIDE_REQUIRED", "event ride id is required")

// Validate performs basic invariants checks mirroring DB constraints.
func (tr *Transition) Validate() error {
	if strings.TrimSpace(tr.RideID) == "" {
		return ErrRideIDRequired
	}
	if !tr.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// WithField sets/overwrites a single key in Data.
func (tr *Transition) WithField(key string, value any) *Transition {
	if tr.Data == nil {
		tr.Data = make(map[string]any)
	}
	tr.Data[key] = value
	return tr
}

// DataJSON returns the payload stored in the `event_data` column.
func (tr *Transition) DataJSON() ([]byte, error) {
	payload := cloneMap(tr.Data)
	if payload == nil {
		payload = make(map[string]any, 8)
	}
	setIf(payload, "booking_id", tr.BookingID)
	setIf(payload, "rating_id", tr.RatingID)
	setIf(payload, "actor_id", tr.ActorID)
	setIf(payload, "actor_role", tr.ActorRole)
	setIf(payload, "passenger_id", tr.PassengerID)
	setIf(payload, "driver_id", tr.DriverID)
	setIf(payload, "ratee_id", tr.RateeID)
	setIf(payload, "reason", tr.Reason)
	if tr.Seats > 0 {
		payload["seats"] = tr.Seats
	}
	return json.Marshal(payload)
}

func setIf(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// cloneMap makes a shallow copy of a map[string]any.
func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	maps.Copy(dst, src)
	return dst
}
