package service

import (
	"time"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// Service encapsulates the admin dashboard service logic and dependencies.
type adminService struct {
	uow         ports.UnitOfWork
	rideRepo    ports.RideRepository
	bookingRepo ports.BookingRepository
	now         func() time.Time
}

// NewAdminService creates a new instance of the AdminService with the provided dependencies.
func NewAdminService(
	uow ports.UnitOfWork,
	rideRepo ports.RideRepository,
	bookingRepo ports.BookingRepository,
) ports.AdminService {
	return &adminService{
		uow:         uow,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		now:         time.Now,
	}
}

func requireAdmin(actor user.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperr.ErrForbidden.WithMsg("admin role required")
	}
	return nil
}
