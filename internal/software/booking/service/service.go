package service

import (
	"time"

	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// Service encapsulates the booking lifecycle logic and dependencies.
type bookingService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	rideRepo    ports.RideRepository
	bookingRepo ports.BookingRepository
	eventRepo   ports.EventRepository
	ledger      ports.SeatLedger
	effects     ports.Effects
	now         func() time.Time
}

// Option customizes the booking service.
type Option func(*bookingService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *bookingService) { s.now = now }
}

// NewBookingService creates a new instance of the BookingService with the provided dependencies.
func NewBookingService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rideRepo ports.RideRepository,
	bookingRepo ports.BookingRepository,
	eventRepo ports.EventRepository,
	ledger ports.SeatLedger,
	effects ports.Effects,
	opts ...Option,
) ports.BookingService {
	s := &bookingService{
		logger:      logger,
		uow:         uow,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		ledger:      ledger,
		effects:     effects,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
