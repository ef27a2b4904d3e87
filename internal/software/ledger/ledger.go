// Package ledger owns the seat inventory of rides. Every change to seats_available goes
// through it so that seats_total - seats_available always equals the seats held by
// approved and completed bookings.
package ledger

import (
	"context"
	"errors"

	"ride-share/internal/domain/ride"
	"ride-share/internal/general/observability"
	"ride-share/internal/ports"
)

// Ledger applies seat changes through the atomic primitives of the ride repository.
type Ledger struct {
	rides ports.RideRepository
}

// New creates a Ledger over rides.
func New(rides ports.RideRepository) *Ledger {
	return &Ledger{rides: rides}
}

// Reserve checks that seats can be taken from r. It has no effect; Debit is authoritative.
func (l *Ledger) Reserve(r *ride.Ride, seats int) error {
	return r.CanReserve(seats)
}

// Debit atomically takes seats from a scheduled ride and returns the seats left.
func (l *Ledger) Debit(ctx context.Context, rideID string, seats int) (int, error) {
	if seats < 1 {
		return 0, ride.ErrInvalidSeatCount
	}
	left, err := l.rides.DebitSeats(ctx, rideID, seats)
	if err != nil {
		if errors.Is(err, ride.ErrInsufficientSeats) {
			observability.SeatContentionTotal.Inc()
		}
		return 0, err
	}
	observability.SeatsDebitedTotal.Add(float64(seats))
	return left, nil
}

// Credit atomically returns seats to a ride, never above its total.
func (l *Ledger) Credit(ctx context.Context, rideID string, seats int) error {
	if seats < 1 {
		return ride.ErrInvalidSeatCount
	}
	if err := l.rides.CreditSeats(ctx, rideID, seats); err != nil {
		return err
	}
	observability.SeatsCreditedTotal.Add(float64(seats))
	return nil
}

// Resize sets a new capacity. It fails with ride.ErrBelowBookedSeats when capacity is
// below the committed seats; resizing to exactly the committed seats leaves none available.
func (l *Ledger) Resize(ctx context.Context, rideID string, capacity int) error {
	if capacity < 1 {
		return ride.ErrInvalidSeatCount
	}
	return l.rides.ResizeSeats(ctx, rideID, capacity)
}

var _ ports.SeatLedger = (*Ledger)(nil)
