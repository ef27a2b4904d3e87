package service

import (
	"time"

	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

const defaultPageSize = 50

// Service encapsulates rating submission and aggregation.
type ratingService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	bookingRepo ports.BookingRepository
	ratingRepo  ports.RatingRepository
	statsRepo   ports.UserStatsRepository
	eventRepo   ports.EventRepository
	effects     ports.Effects
	now         func() time.Time
	pageSize    int
}

// Option customizes the rating service.
type Option func(*ratingService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *ratingService) { s.now = now }
}

// WithPageSize sets how many bookings PendingFor fetches per query.
func WithPageSize(n int) Option {
	return func(s *ratingService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewRatingService creates a new instance of the RatingService with the provided dependencies.
func NewRatingService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	bookingRepo ports.BookingRepository,
	ratingRepo ports.RatingRepository,
	statsRepo ports.UserStatsRepository,
	eventRepo ports.EventRepository,
	effects ports.Effects,
	opts ...Option,
) ports.RatingService {
	s := &ratingService{
		logger:      logger,
		uow:         uow,
		bookingRepo: bookingRepo,
		ratingRepo:  ratingRepo,
		statsRepo:   statsRepo,
		eventRepo:   eventRepo,
		effects:     effects,
		now:         time.Now,
		pageSize:    defaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
