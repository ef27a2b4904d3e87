package service

import (
	"time"

	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// Service encapsulates the ride lifecycle logic and dependencies.
type rideService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	rideRepo    ports.RideRepository
	bookingRepo ports.BookingRepository
	eventRepo   ports.EventRepository
	ledger      ports.SeatLedger
	estimator   ports.TravelEstimator
	effects     ports.Effects
	now         func() time.Time
}

// Option customizes the ride service.
type Option func(*rideService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *rideService) { s.now = now }
}

// NewRideService creates a new instance of the RideService with the provided dependencies.
func NewRideService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rideRepo ports.RideRepository,
	bookingRepo ports.BookingRepository,
	eventRepo ports.EventRepository,
	ledger ports.SeatLedger,
	estimator ports.TravelEstimator,
	effects ports.Effects,
	opts ...Option,
) ports.RideService {
	s := &rideService{
		logger:      logger,
		uow:         uow,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		ledger:      ledger,
		estimator:   estimator,
		effects:     effects,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
