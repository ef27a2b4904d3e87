package booking

import (
	"strings"

	"ride-share/internal/domain/apperr"
)

// Status is a booking status as stored in the `bookings.status` column.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

var ErrInvalidStatus = apperr.New(apperr.KindInvalidInput, "INVALID_BOOKING_STATUS", "invalid booking status")

// ParseStatus normalizes (uppercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed booking status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// CanTransitionTo specifies if the status can transition to the next status.
func (status Status) CanTransitionTo(next Status) bool {
	switch status {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected || next == StatusCancelled

	case StatusApproved:
		return next == StatusCancelled || next == StatusCompleted

	default:
		return false
	}
}

// Active reports whether the booking still occupies the passenger's slot on the ride.
func (status Status) Active() bool {
	return status == StatusPending || status == StatusApproved
}

// HoldsSeats reports whether seats of the booking are debited from the ride.
func (status Status) HoldsSeats() bool {
	return status == StatusApproved || status == StatusCompleted
}

// Terminal indicates if the status is in a final state.
func (status Status) Terminal() bool {
	return status == StatusRejected || status == StatusCancelled || status == StatusCompleted
}
