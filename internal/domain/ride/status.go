package ride

import (
	"slices"
	"strings"

	"ride-share/internal/domain/apperr"
)

// Status is a ride status as stored in the `rides.status` column.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var ErrInvalidStatus = apperr.New(apperr.KindInvalidInput, "INVALID_RIDE_STATUS", "invalid ride status")

// transitions lists the statuses reachable from each status in one step. Completed and
// cancelled rides are final.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
}

// ActiveStatuses are the statuses of rides that have not finished yet.
var ActiveStatuses = []Status{StatusScheduled, StatusInProgress}

// ParseStatus normalizes (uppercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

func (status Status) Valid() bool {
	_, ok := transitions[status]
	return ok
}

func (status Status) String() string {
	return string(status)
}

// CanTransitionTo reports whether next is reachable from status in one step.
func (status Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[status], next)
}

// Active reports whether the ride still accepts lifecycle changes.
func (status Status) Active() bool {
	return slices.Contains(ActiveStatuses, status)
}

func (status Status) Terminal() bool {
	return status.Valid() && len(transitions[status]) == 0
}
