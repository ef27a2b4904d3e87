package service

import (
	"context"
	"fmt"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
)

// Approve approves a PENDING booking and debits its seats in the same unit of work. When a
// competing approval took the seats first, it fails with ride.ErrInsufficientSeats and the
// booking stays PENDING.
func (service *bookingService) Approve(ctx context.Context, actor user.Actor, bookingID, notes string) (*booking.Booking, error) {
	ctx = service.logger.WithBookingID(ctx, bookingID)

	b, tr, err := service.decide(ctx, actor, bookingID, booking.StatusApproved,
		func(txCtx context.Context, r *ride.Ride, b *booking.Booking) error {
			if err := service.ledger.Reserve(r, b.SeatsBooked); err != nil {
				return err
			}
			if _, err := service.ledger.Debit(txCtx, r.ID, b.SeatsBooked); err != nil {
				return err
			}
			return b.Approve(notes, service.now())
		})
	if err != nil {
		service.logFailure(ctx, "booking_approve_failed", "Failed to approve booking", err, actor)
		return nil, err
	}

	service.effects.Raise(ctx, []*event.Transition{tr})

	service.logger.Info(service.logger.WithRideID(ctx, b.RideID), "booking_approved",
		fmt.Sprintf("Booking %s approved", b.ID),
		map[string]any{"seats": b.SeatsBooked},
	)

	return b, nil
}

// Reject rejects a PENDING booking. No seats were ever debited for it.
func (service *bookingService) Reject(ctx context.Context, actor user.Actor, bookingID, notes string) (*booking.Booking, error) {
	ctx = service.logger.WithBookingID(ctx, bookingID)

	b, tr, err := service.decide(ctx, actor, bookingID, booking.StatusRejected,
		func(_ context.Context, _ *ride.Ride, b *booking.Booking) error {
			return b.Reject(notes, service.now())
		})
	if err != nil {
		service.logFailure(ctx, "booking_reject_failed", "Failed to reject booking", err, actor)
		return nil, err
	}

	service.effects.Raise(ctx, []*event.Transition{tr})

	service.logger.Info(service.logger.WithRideID(ctx, b.RideID), "booking_rejected",
		fmt.Sprintf("Booking %s rejected", b.ID), nil)

	return b, nil
}
