package service

import (
	"context"
	"fmt"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/user"
)

// Cancel cancels a PENDING or APPROVED booking on behalf of its passenger, its driver or an
// admin. Seats of an approved booking are credited back to the ride.
func (service *bookingService) Cancel(ctx context.Context, actor user.Actor, bookingID, reason string) (*booking.Booking, error) {
	ctx = service.logger.WithBookingID(ctx, bookingID)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var (
		out       *booking.Booking
		tr        *event.Transition
		heldSeats bool
		now       = service.now()
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, b, err := service.lockForChange(txCtx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsParty(actor.ID) && !actor.IsAdmin() {
			return booking.ErrNotBookingParty
		}

		heldSeats, err = b.Cancel(actor.ID, reason, now)
		if err != nil {
			return err
		}
		if err := service.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}
		if heldSeats {
			if err := service.ledger.Credit(txCtx, r.ID, b.SeatsBooked); err != nil {
				return err
			}
		}

		out = b
		tr = event.ForBooking(event.BookingCancelled, b, actor, now).WithReason(reason)
		return service.record(txCtx, tr)
	})
	if err != nil {
		service.logFailure(ctx, "booking_cancel_failed", "Failed to cancel booking", err, actor)
		return nil, err
	}

	service.effects.Raise(ctx, []*event.Transition{tr})

	service.logger.Info(service.logger.WithRideID(ctx, out.RideID), "booking_cancelled",
		fmt.Sprintf("Booking %s cancelled by %s", out.ID, actor.ID),
		map[string]any{
			"reason":         reason,
			"seats_released": heldSeats,
		},
	)

	return out, nil
}
