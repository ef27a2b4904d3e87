package service

import (
	"context"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// ActiveRides returns scheduled and in-progress rides, earliest departure first.
func (service *adminService) ActiveRides(ctx context.Context, actor user.Actor, page ports.Page) ([]*ride.Ride, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var out []*ride.Ride
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = service.rideRepo.ListByStatus(txCtx, page.Normalize(), ride.ActiveStatuses...)
		return err
	})
	return out, err
}
