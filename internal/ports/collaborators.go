package ports

import (
	"context"
	"time"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/notification"
	"ride-share/internal/domain/ride"
)

// TravelEstimator returns the expected travel time between two points.
type TravelEstimator interface {
	TravelTime(ctx context.Context, from, to geo.Point) (time.Duration, error)
}

// NotificationSink delivers a single notification.
type NotificationSink interface {
	Raise(ctx context.Context, n notification.Notification) error
}

// Effects turns committed transitions into notifications. It never fails the caller.
type Effects interface {
	Raise(ctx context.Context, transitions []*event.Transition)
}

// SeatLedger owns the seat inventory of rides. Debit, Credit and Resize must run inside
// a unit of work.
type SeatLedger interface {
	Reserve(r *ride.Ride, seats int) error
	Debit(ctx context.Context, rideID string, seats int) (int, error)
	Credit(ctx context.Context, rideID string, seats int) error
	Resize(ctx context.Context, rideID string, capacity int) error
}
