package service

import (
	"context"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// Overview collects ride and booking counts by status in one unit of work.
func (service *adminService) Overview(ctx context.Context, actor user.Actor) (ports.SystemOverview, error) {
	if err := requireAdmin(actor); err != nil {
		return ports.SystemOverview{}, err
	}

	res := ports.SystemOverview{Timestamp: service.now().UTC()}
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		if res.Rides, err = service.rideRepo.CountByStatus(txCtx); err != nil {
			return err
		}
		res.Bookings, err = service.bookingRepo.CountByStatus(txCtx)
		return err
	})
	if err != nil {
		return ports.SystemOverview{}, err
	}

	for _, st := range ride.ActiveStatuses {
		res.ActiveRides += res.Rides[st]
	}
	res.PendingBookings = res.Bookings[booking.StatusPending]
	return res, nil
}
