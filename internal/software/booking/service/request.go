package service

import (
	"context"
	"fmt"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// Request creates a PENDING booking. Seats are checked but not debited: they stay available
// to other requests until the driver approves.
func (service *bookingService) Request(ctx context.Context, actor user.Actor, in ports.RequestBookingInput) (*booking.Booking, error) {
	ctx = service.logger.WithRideID(ctx, in.RideID)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var (
		b   *booking.Booking
		tr  *event.Transition
		now = service.now()
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.rideRepo.GetByID(txCtx, in.RideID)
		if err != nil {
			return err
		}
		if r.IsDriver(actor.ID) {
			return booking.ErrSelfBooking
		}
		if err := service.ledger.Reserve(r, in.SeatsBooked); err != nil {
			return err
		}

		active, err := service.bookingRepo.HasActive(txCtx, r.ID, actor.ID)
		if err != nil {
			return err
		}
		if active {
			return booking.ErrDuplicateActiveBooking
		}

		b, err = booking.NewBooking(booking.NewBookingParams{
			RideID:       r.ID,
			PassengerID:  actor.ID,
			DriverID:     r.DriverID,
			SeatsBooked:  in.SeatsBooked,
			PricePerSeat: r.PricePerSeat,
			Pickup:       in.Pickup,
			Dropoff:      in.Dropoff,
			RideSource:   r.Route.Source,
			RideDest:     r.Route.Destination,
		}, now)
		if err != nil {
			return err
		}
		if err := service.bookingRepo.Create(txCtx, b); err != nil {
			return err
		}
		tr = event.ForBooking(event.BookingRequested, b, actor, now).WithField("total_price", b.TotalPrice)
		return service.record(txCtx, tr)
	})
	if err != nil {
		service.logFailure(ctx, "booking_request_failed", "Failed to request booking", err, actor)
		return nil, err
	}

	service.effects.Raise(ctx, []*event.Transition{tr})

	service.logger.Info(service.logger.WithBookingID(ctx, b.ID), "booking_requested",
		fmt.Sprintf("Passenger %s requested %d seats", actor.ID, b.SeatsBooked),
		map[string]any{"total_price": b.TotalPrice},
	)

	return b, nil
}
