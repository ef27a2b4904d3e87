package event

import (
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
)

// ForRide builds a ride-level transition.
func ForRide(t Type, r *ride.Ride, actor user.Actor, at time.Time) *Transition {
	return &Transition{
		Type:       t,
		OccurredAt: at.UTC(),
		RideID:     r.ID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role.String(),
		DriverID:   r.DriverID,
	}
}

// ForBooking builds a transition about a single booking.
func ForBooking(t Type, b *booking.Booking, actor user.Actor, at time.Time) *Transition {
	return &Transition{
		Type:        t,
		OccurredAt:  at.UTC(),
		RideID:      b.RideID,
		BookingID:   b.ID,
		ActorID:     actor.ID,
		ActorRole:   actor.Role.String(),
		PassengerID: b.PassengerID,
		DriverID:    b.DriverID,
		Seats:       b.SeatsBooked,
	}
}

// ForRating builds a transition about a rating on booking b.
func ForRating(t Type, r *rating.Rating, b *booking.Booking, actor user.Actor, at time.Time) *Transition {
	tr := ForBooking(t, b, actor, at)
	tr.RatingID = r.ID
	tr.RateeID = r.RateeID
	tr.Seats = 0
	return tr.WithField("score", r.Score)
}

// WithReason sets the reason and returns tr.
func (tr *Transition) WithReason(reason string) *Transition {
	tr.Reason = reason
	return tr
}
