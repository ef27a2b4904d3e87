package service

import (
	"context"
	"fmt"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// Start moves a ride SCHEDULED -> IN_PROGRESS and notifies approved passengers.
func (service *rideService) Start(ctx context.Context, actor user.Actor, rideID string) (*ride.Ride, error) {
	ctx = service.logger.WithRideID(ctx, rideID)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var (
		now         = service.now()
		started     *ride.Ride
		transitions []*event.Transition
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.loadOwned(txCtx, actor, rideID, false)
		if err != nil {
			return err
		}
		if err := r.Start(now); err != nil {
			return err
		}
		if err := service.rideRepo.Update(txCtx, r); err != nil {
			return err
		}

		approved, err := service.bookingRepo.ListByRide(txCtx, rideID, booking.StatusApproved)
		if err != nil {
			return err
		}
		transitions = append(transitions, event.ForRide(event.RideStarted, r, actor, now))
		for _, b := range approved {
			transitions = append(transitions, event.ForBooking(event.RideStarted, b, actor, now))
		}
		if err := service.record(txCtx, transitions); err != nil {
			return err
		}

		started, err = service.rideRepo.GetByID(txCtx, rideID)
		return err
	})
	if err != nil {
		service.logFailure(ctx, "ride_start_failed", "Failed to start ride", err, actor, rideID)
		return nil, err
	}

	service.effects.Raise(ctx, transitions)

	service.logger.Info(ctx, "ride_started", fmt.Sprintf("Ride %s started", rideID), map[string]any{
		"passengers_notified": len(transitions) - 1,
	})

	return started, nil
}

// Complete moves a ride IN_PROGRESS -> COMPLETED, completes every approved booking and
// returns the driver's earnings for the ride.
func (service *rideService) Complete(ctx context.Context, actor user.Actor, rideID string) (ports.CompleteRideResult, error) {
	ctx = service.logger.WithRideID(ctx, rideID)
	if err := actor.Validate(); err != nil {
		return ports.CompleteRideResult{}, err
	}

	var (
		now         = service.now()
		result      ports.CompleteRideResult
		transitions []*event.Transition
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.loadOwned(txCtx, actor, rideID, false)
		if err != nil {
			return err
		}
		if err := r.Complete(now); err != nil {
			return err
		}
		if err := service.rideRepo.Update(txCtx, r); err != nil {
			return err
		}

		approved, err := service.bookingRepo.LockByRide(txCtx, rideID, booking.StatusApproved)
		if err != nil {
			return err
		}
		transitions = append(transitions, event.ForRide(event.RideCompleted, r, actor, now))
		for _, b := range approved {
			if err := b.Complete(now); err != nil {
				return err
			}
			if err := service.bookingRepo.Update(txCtx, b); err != nil {
				return err
			}
			result.DriverEarnings += b.TotalPrice
			transitions = append(transitions, event.ForBooking(event.RideCompleted, b, actor, now))
		}
		result.CompletedBookings = len(approved)
		if err := service.record(txCtx, transitions); err != nil {
			return err
		}

		result.Ride, err = service.rideRepo.GetByID(txCtx, rideID)
		return err
	})
	if err != nil {
		service.logFailure(ctx, "ride_complete_failed", "Failed to complete ride", err, actor, rideID)
		return ports.CompleteRideResult{}, err
	}

	service.effects.Raise(ctx, transitions)

	service.logger.Info(ctx, "ride_completed", fmt.Sprintf("Ride %s completed", rideID), map[string]any{
		"completed_bookings": result.CompletedBookings,
		"driver_earnings":    result.DriverEarnings,
	})

	return result, nil
}
