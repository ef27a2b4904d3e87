package memstore

import (
	"cmp"
	"context"
	"slices"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/rating"
	"ride-share/internal/ports"
)

// BookingRepo stores bookings in memory.
type BookingRepo struct {
	s *Store
}

func (repo *BookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	if b.Status.Active() && repo.hasActive(b.RideID, b.PassengerID) {
		return booking.ErrDuplicateActiveBooking
	}
	if b.ID == "" {
		b.ID = newID()
	}
	repo.s.bookings[b.ID] = b.Clone()
	return nil
}

func (repo *BookingRepo) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	cur, ok := repo.s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return cur.Clone(), nil
}

func (repo *BookingRepo) GetForUpdate(ctx context.Context, id string) (*booking.Booking, error) {
	return repo.GetByID(ctx, id)
}

func (repo *BookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	if _, ok := repo.s.bookings[b.ID]; !ok {
		return booking.ErrBookingNotFound
	}
	repo.s.bookings[b.ID] = b.Clone()
	return nil
}

func (repo *BookingRepo) HasActive(ctx context.Context, rideID, passengerID string) (bool, error) {
	if err := requireTx(ctx); err != nil {
		return false, err
	}
	return repo.hasActive(rideID, passengerID), nil
}

func (repo *BookingRepo) ListByRide(ctx context.Context, rideID string, statuses ...booking.Status) ([]*booking.Booking, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	out := repo.filter(func(b *booking.Booking) bool {
		return b.RideID == rideID && (len(statuses) == 0 || slices.Contains(statuses, b.Status))
	})
	slices.SortFunc(out, func(a, b *booking.Booking) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (repo *BookingRepo) LockByRide(ctx context.Context, rideID string, statuses ...booking.Status) ([]*booking.Booking, error) {
	return repo.ListByRide(ctx, rideID, statuses...)
}

func (repo *BookingRepo) ListByUser(ctx context.Context, userID string, page ports.Page) ([]*booking.Booking, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	out := repo.filter(func(b *booking.Booking) bool { return b.IsParty(userID) })
	slices.SortFunc(out, func(a, b *booking.Booking) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return paginate(out, page), nil
}

func (repo *BookingRepo) PendingRatings(ctx context.Context, userID string, asPassenger bool, afterID string, limit int) ([]rating.Pending, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	matches := repo.filter(func(b *booking.Booking) bool {
		if b.Status != booking.StatusCompleted || b.ID <= afterID {
			return false
		}
		if asPassenger {
			return b.PassengerID == userID && !b.IsRatedByPassenger
		}
		return b.DriverID == userID && !b.IsRatedByDriver
	})
	slices.SortFunc(matches, func(a, b *booking.Booking) int { return cmp.Compare(a.ID, b.ID) })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]rating.Pending, 0, len(matches))
	for _, b := range matches {
		p := rating.Pending{
			BookingID:         b.ID,
			RideID:            b.RideID,
			RateeID:           b.Counterparty(userID),
			IsPassengerRating: asPassenger,
		}
		if b.CompletedAt != nil {
			p.CompletedAt = *b.CompletedAt
		}
		out = append(out, p)
	}
	return out, nil
}

func (repo *BookingRepo) CountByStatus(ctx context.Context) (map[booking.Status]int, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	out := make(map[booking.Status]int)
	for _, b := range repo.s.bookings {
		out[b.Status]++
	}
	return out, nil
}

func (repo *BookingRepo) hasActive(rideID, passengerID string) bool {
	for _, b := range repo.s.bookings {
		if b.RideID == rideID && b.PassengerID == passengerID && b.Status.Active() {
			return true
		}
	}
	return false
}

func (repo *BookingRepo) filter(keep func(b *booking.Booking) bool) []*booking.Booking {
	var out []*booking.Booking
	for _, b := range repo.s.bookings {
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	return out
}

func paginate[T any](items []T, page ports.Page) []T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if len(items) > page.Limit {
		items = items[:page.Limit]
	}
	return items
}
