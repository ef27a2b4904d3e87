package memstore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"

	"github.com/google/uuid"
)

// ctxKey is an unexported key type marking a context as running inside WithinTx.
type ctxKey struct{}

var txKey = ctxKey{}

// Store is an in-memory implementation of every repository port. A unit of work holds the
// store-wide lock for its whole duration and restores a snapshot when it fails, so
// transactions are serializable and leave no partial state.
type Store struct {
	mu sync.Mutex

	rides    map[string]*ride.Ride
	bookings map[string]*booking.Booking
	ratings  map[string]*rating.Rating
	stats    map[string]user.Stats
	events   []*event.Transition

	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		rides:    make(map[string]*ride.Ride),
		bookings: make(map[string]*booking.Booking),
		ratings:  make(map[string]*rating.Rating),
		stats:    make(map[string]user.Stats),
		now:      time.Now,
	}
}

// Repositories bundles the store's repository views.
type Repositories struct {
	UnitOfWork ports.UnitOfWork
	Rides      ports.RideRepository
	Bookings   ports.BookingRepository
	Ratings    ports.RatingRepository
	UserStats  ports.UserStatsRepository
	Events     ports.EventRepository
}

// Repositories returns every repository backed by s.
func (s *Store) Repositories() Repositories {
	return Repositories{
		UnitOfWork: s,
		Rides:      &RideRepo{s: s},
		Bookings:   &BookingRepo{s: s},
		Ratings:    &RatingRepo{s: s},
		UserStats:  &UserStatsRepo{s: s},
		Events:     &EventRepo{s: s},
	}
}

// WithinTx executes fn while holding the store lock.
//   - If a transaction already exists in ctx, fn is executed within it (nested calls are supported).
//   - If fn returns an error or panics, every change made by fn is discarded.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey, true)); err != nil {
		return err
	}
	committed = true
	return nil
}

// Events returns a copy of the audit log. It must not be called inside WithinTx.
func (s *Store) Events() []*event.Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

var errNoTx = errors.New("no transaction in context: call this repository within UnitOfWork.WithinTx")

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey).(bool)
	return v
}

func requireTx(ctx context.Context) error {
	if !inTx(ctx) {
		return errNoTx
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

// ----- snapshot -----

type snapshot struct {
	rides    map[string]*ride.Ride
	bookings map[string]*booking.Booking
	ratings  map[string]*rating.Rating
	stats    map[string]user.Stats
	events   []*event.Transition
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		rides:    make(map[string]*ride.Ride, len(s.rides)),
		bookings: make(map[string]*booking.Booking, len(s.bookings)),
		ratings:  make(map[string]*rating.Rating, len(s.ratings)),
		stats:    maps.Clone(s.stats),
		events:   slices.Clone(s.events),
	}
	for id, r := range s.rides {
		snap.rides[id] = r.Clone()
	}
	for id, b := range s.bookings {
		snap.bookings[id] = b.Clone()
	}
	for id, r := range s.ratings {
		snap.ratings[id] = r.Clone()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.rides = snap.rides
	s.bookings = snap.bookings
	s.ratings = snap.ratings
	s.stats = snap.stats
	s.events = snap.events
}
