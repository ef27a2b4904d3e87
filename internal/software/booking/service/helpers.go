package service

import (
	"context"
	"fmt"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
)

// record appends transitions to the audit log inside the current unit of work.
func (service *bookingService) record(ctx context.Context, transitions ...*event.Transition) error {
	for _, tr := range transitions {
		if err := service.eventRepo.Append(ctx, tr); err != nil {
			return fmt.Errorf("append %s event: %w", tr.Type, err)
		}
	}
	return nil
}

// lockForChange locks the ride and then the booking. Every path that changes both takes the
// locks in this order.
func (service *bookingService) lockForChange(ctx context.Context, bookingID string) (*ride.Ride, *booking.Booking, error) {
	peek, err := service.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	r, err := service.rideRepo.GetForUpdate(ctx, peek.RideID)
	if err != nil {
		return nil, nil, err
	}
	b, err := service.bookingRepo.GetForUpdate(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return r, b, nil
}

// decide is the common body of approve and reject.
type decision func(ctx context.Context, r *ride.Ride, b *booking.Booking) error

func (service *bookingService) decide(ctx context.Context, actor user.Actor, bookingID string, next booking.Status, apply decision) (*booking.Booking, *event.Transition, error) {
	if err := actor.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		out *booking.Booking
		tr  *event.Transition
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, b, err := service.lockForChange(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.DriverID != actor.ID {
			return booking.ErrNotBookingDriver
		}
		if !b.Status.CanTransitionTo(next) {
			return booking.ErrInvalidStatusTransition.WithMsg("booking is %s and cannot become %s", b.Status, next)
		}
		if err := apply(txCtx, r, b); err != nil {
			return err
		}
		if err := service.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}

		typ := event.BookingApproved
		if next == booking.StatusRejected {
			typ = event.BookingRejected
		}
		tr = event.ForBooking(typ, b, actor, service.now())
		if b.DriverNotes != nil {
			tr.WithField("notes", *b.DriverNotes)
		}
		out = b
		return service.record(txCtx, tr)
	})
	if err != nil {
		return nil, nil, err
	}
	return out, tr, nil
}

func (service *bookingService) logFailure(ctx context.Context, action, msg string, err error, actor user.Actor) {
	service.logger.Error(ctx, action, msg, err, map[string]any{
		"actor_id": actor.ID,
		"role":     actor.Role,
	})
}
