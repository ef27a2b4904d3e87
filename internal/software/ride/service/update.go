package service

import (
	"context"
	"fmt"
	"time"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
)

// Update changes a SCHEDULED ride owned by the actor. Capacity changes go through the seat
// ledger; every passenger with an active booking is told about the change.
func (service *rideService) Update(ctx context.Context, actor user.Actor, rideID string, patch ride.Patch) (*ride.Ride, error) {
	ctx = service.logger.WithRideID(ctx, rideID)
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, apperr.Invalid("nothing to update")
	}

	// a new route needs a fresh estimate, computed before locking anything
	var newTravel *time.Duration
	if patch.Route != nil {
		if err := patch.Route.Validate(); err != nil {
			return nil, err
		}
		d, err := service.travelTime(ctx, *patch.Route)
		if err != nil {
			service.logFailure(ctx, "ride_update_failed", "Failed to estimate travel time", err, actor, rideID)
			return nil, err
		}
		newTravel = &d
	}

	var (
		now         = service.now()
		updated     *ride.Ride
		transitions []*event.Transition
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.loadOwned(txCtx, actor, rideID, false)
		if err != nil {
			return err
		}

		travel := r.EstimatedArrivalTime.Sub(r.DepartureTime)
		scheduleChanged, err := r.Apply(patch, now)
		if err != nil {
			return err
		}
		if scheduleChanged {
			if newTravel != nil {
				travel = *newTravel
			}
			r.SetTravelTime(travel)
		}
		if err := service.rideRepo.Update(txCtx, r); err != nil {
			return err
		}

		if patch.SeatsTotal != nil {
			if err := service.ledger.Resize(txCtx, rideID, *patch.SeatsTotal); err != nil {
				return err
			}
		}

		active, err := service.bookingRepo.ListByRide(txCtx, rideID, booking.StatusPending, booking.StatusApproved)
		if err != nil {
			return err
		}
		transitions = make([]*event.Transition, 0, len(active))
		for _, b := range active {
			transitions = append(transitions, event.ForBooking(event.RideUpdated, b, actor, now).
				WithField("schedule_changed", scheduleChanged))
		}
		if err := service.record(txCtx, transitions); err != nil {
			return err
		}

		updated, err = service.rideRepo.GetByID(txCtx, rideID)
		return err
	})
	if err != nil {
		service.logFailure(ctx, "ride_update_failed", "Failed to update ride", err, actor, rideID)
		return nil, err
	}

	service.effects.Raise(ctx, transitions)

	service.logger.Info(ctx, "ride_updated",
		fmt.Sprintf("Ride %s updated", rideID),
		map[string]any{
			"notified_bookings": len(transitions),
			"seats_total":       updated.SeatsTotal,
			"seats_available":   updated.SeatsAvailable,
		},
	)

	return updated, nil
}
