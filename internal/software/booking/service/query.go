package service

import (
	"context"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// Get returns a booking visible to its passenger, its driver or an admin.
func (service *bookingService) Get(ctx context.Context, actor user.Actor, bookingID string) (*booking.Booking, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var b *booking.Booking
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		b, err = service.bookingRepo.GetByID(txCtx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !b.IsParty(actor.ID) && !actor.IsAdmin() {
		return nil, booking.ErrNotBookingParty
	}
	return b, nil
}

// ListForRide returns every booking of a ride to its driver or an admin.
func (service *bookingService) ListForRide(ctx context.Context, actor user.Actor, rideID string) ([]*booking.Booking, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var out []*booking.Booking
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.rideRepo.GetByID(txCtx, rideID)
		if err != nil {
			return err
		}
		if !r.IsDriver(actor.ID) && !actor.IsAdmin() {
			return ride.ErrNotRideDriver
		}
		out, err = service.bookingRepo.ListByRide(txCtx, rideID)
		return err
	})
	return out, err
}

// ListMine returns bookings where the actor is the passenger or the driver, newest first.
func (service *bookingService) ListMine(ctx context.Context, actor user.Actor, page ports.Page) ([]*booking.Booking, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var out []*booking.Booking
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = service.bookingRepo.ListByUser(txCtx, actor.ID, page.Normalize())
		return err
	})
	return out, err
}
