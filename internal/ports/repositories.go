package ports

import (
	"context"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Page is a limit/offset window for list queries.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// RideRepository defines the methods for managing ride data. Seat columns are owned by the
// seat ledger primitives; Update never writes them.
type RideRepository interface {
	Create(ctx context.Context, r *ride.Ride) error
	GetByID(ctx context.Context, id string) (*ride.Ride, error)
	GetForUpdate(ctx context.Context, id string) (*ride.Ride, error)
	Update(ctx context.Context, r *ride.Ride) error
	AppendNote(ctx context.Context, rideID string, n ride.Note) error

	// DebitSeats atomically takes seats from a SCHEDULED ride and returns the seats left.
	DebitSeats(ctx context.Context, rideID string, seats int) (int, error)
	// CreditSeats atomically returns seats to a ride, capped at its total.
	CreditSeats(ctx context.Context, rideID string, seats int) error
	// ResizeSeats atomically sets a new capacity, keeping committed seats committed.
	ResizeSeats(ctx context.Context, rideID string, capacity int) error

	CountByStatus(ctx context.Context) (map[ride.Status]int, error)
	// ListByStatus returns rides in any of statuses, earliest departure first.
	ListByStatus(ctx context.Context, page Page, statuses ...ride.Status) ([]*ride.Ride, error)
}

// BookingRepository defines the methods for managing booking data.
type BookingRepository interface {
	// Create fails with booking.ErrDuplicateActiveBooking when the passenger already holds
	// a PENDING or APPROVED booking on the ride.
	Create(ctx context.Context, b *booking.Booking) error
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
	GetForUpdate(ctx context.Context, id string) (*booking.Booking, error)
	Update(ctx context.Context, b *booking.Booking) error
	HasActive(ctx context.Context, rideID, passengerID string) (bool, error)
	ListByRide(ctx context.Context, rideID string, statuses ...booking.Status) ([]*booking.Booking, error)
	// LockByRide is ListByRide with row locks, used by ride-level cascades.
	LockByRide(ctx context.Context, rideID string, statuses ...booking.Status) ([]*booking.Booking, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]*booking.Booking, error)
	// PendingRatings returns completed bookings of userID not yet rated from the given side,
	// ordered by booking id and starting strictly after afterID.
	PendingRatings(ctx context.Context, userID string, asPassenger bool, afterID string, limit int) ([]rating.Pending, error)
	CountByStatus(ctx context.Context) (map[booking.Status]int, error)
}

// RatingRepository defines the methods for managing rating data.
type RatingRepository interface {
	// Create fails with rating.ErrDuplicateRating on a second (booking, rater, ratee) row.
	Create(ctx context.Context, r *rating.Rating) error
	GetByID(ctx context.Context, id string) (*rating.Rating, error)
	GetForUpdate(ctx context.Context, id string) (*rating.Rating, error)
	Update(ctx context.Context, r *rating.Rating) error
	Delete(ctx context.Context, id string) error
	ListByRatee(ctx context.Context, rateeID string, page Page) ([]*rating.Rating, error)
}

// UserStatsRepository stores the rating aggregate per ratee.
type UserStatsRepository interface {
	Get(ctx context.Context, userID string) (user.Stats, error)
	Apply(ctx context.Context, userID string, sumDelta, countDelta int) (user.Stats, error)
}

// EventRepository appends transitions to the audit log.
type EventRepository interface {
	Append(ctx context.Context, tr *event.Transition) error
}
