package event

import (
	"strings"

	"ride-share/internal/domain/apperr"
)

// Type corresponds to the values of the `booking_events.event_type` column.
type Type string

const (
	RideCreated   Type = "RIDE_CREATED"
	RideUpdated   Type = "RIDE_UPDATED"
	RideStarted   Type = "RIDE_STARTED"
	RideCompleted Type = "RIDE_COMPLETED"
	RideCancelled Type = "RIDE_CANCELLED"

	BookingRequested Type = "BOOKING_REQUESTED"
	BookingApproved  Type = "BOOKING_APPROVED"
	BookingRejected  Type = "BOOKING_REJECTED"
	BookingCancelled Type = "BOOKING_CANCELLED"
	BookingCompleted Type = "BOOKING_COMPLETED"

	RatingSubmitted Type = "RATING_SUBMITTED"
	RatingUpdated   Type = "RATING_UPDATED"
	RatingDeleted   Type = "RATING_DELETED"
)

var ErrInvalidType = apperr.New(apperr.KindInvalidInput, "INVALID_EVENT_TYPE", "invalid event type")

// ParseType normalizes (uppercases+trims) and validates an event type string.
func ParseType(input string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(input)))
	if t.Valid() {
		return t, nil
	}
	return "", ErrInvalidType
}

// Valid reports whether t is one of the allowed event type constants.
func (t Type) Valid() bool {
	switch t {
	case RideCreated, RideUpdated, RideStarted, RideCompleted, RideCancelled,
		BookingRequested, BookingApproved, BookingRejected, BookingCancelled, BookingCompleted,
		RatingSubmitted, RatingUpdated, RatingDeleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Type.
func (t Type) String() string {
	return string(t)
}
