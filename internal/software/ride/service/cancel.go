package service

import (
	"context"
	"fmt"
	"strings"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// Cancel cancels a SCHEDULED ride and cascades the cancellation to every pending or approved
// booking. Seats of approved bookings are credited back so the ride ends fully available.
func (service *rideService) Cancel(ctx context.Context, actor user.Actor, rideID, reason string) (ports.CancelRideResult, error) {
	ctx = service.logger.WithRideID(ctx, rideID)
	if err := actor.Validate(); err != nil {
		return ports.CancelRideResult{}, err
	}

	var (
		now         = service.now()
		result      ports.CancelRideResult
		transitions []*event.Transition
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.loadOwned(txCtx, actor, rideID, true)
		if err != nil {
			return err
		}
		if err := r.Cancel(reason, now); err != nil {
			return err
		}
		if err := service.rideRepo.Update(txCtx, r); err != nil {
			return err
		}

		active, err := service.bookingRepo.LockByRide(txCtx, rideID, booking.StatusPending, booking.StatusApproved)
		if err != nil {
			return err
		}

		note := cascadeNote(reason)
		for _, b := range active {
			heldSeats, err := b.Cancel(r.DriverID, note, now)
			if err != nil {
				return err
			}
			if err := service.bookingRepo.Update(txCtx, b); err != nil {
				return err
			}
			if heldSeats {
				if err := service.ledger.Credit(txCtx, rideID, b.SeatsBooked); err != nil {
					return err
				}
				result.SeatsReleased += b.SeatsBooked
			}
			transitions = append(transitions, event.ForBooking(event.BookingCancelled, b, actor, now).WithReason(note))
		}
		result.CancelledBookings = len(active)

		transitions = append(transitions, event.ForRide(event.RideCancelled, r, actor, now).WithReason(reason))
		if err := service.record(txCtx, transitions); err != nil {
			return err
		}

		result.Ride, err = service.rideRepo.GetByID(txCtx, rideID)
		return err
	})
	if err != nil {
		service.logFailure(ctx, "ride_cancel_failed", "Failed to cancel ride", err, actor, rideID)
		return ports.CancelRideResult{}, err
	}

	service.effects.Raise(ctx, transitions)

	service.logger.Info(ctx, "ride_cancelled",
		fmt.Sprintf("Ride %s cancelled", rideID),
		map[string]any{
			"reason":             reason,
			"cancelled_bookings": result.CancelledBookings,
			"seats_released":     result.SeatsReleased,
		},
	)

	return result, nil
}

// cascadeNote is the system cancellation note stored on bookings of a cancelled ride.
func cascadeNote(reason string) string {
	if reason = strings.TrimSpace(reason); reason != "" {
		return "Ride cancelled by driver: " + reason
	}
	return "Ride cancelled by driver"
}
