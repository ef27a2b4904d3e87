package memstore

import (
	"cmp"
	"context"
	"slices"

	"ride-share/internal/domain/ride"
	"ride-share/internal/ports"
)

// RideRepo stores rides in memory.
type RideRepo struct {
	s *Store
}

func (repo *RideRepo) Create(ctx context.Context, r *ride.Ride) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	repo.s.rides[r.ID] = r.Clone()
	return nil
}

func (repo *RideRepo) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	cur, err := repo.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return cur.Clone(), nil
}

// GetForUpdate is GetByID: the store lock already serializes units of work.
func (repo *RideRepo) GetForUpdate(ctx context.Context, id string) (*ride.Ride, error) {
	return repo.GetByID(ctx, id)
}

// Update persists everything except the seat inventory and the notes.
func (repo *RideRepo) Update(ctx context.Context, r *ride.Ride) error {
	cur, err := repo.get(ctx, r.ID)
	if err != nil {
		return err
	}
	cp := r.Clone()
	cp.SeatsTotal = cur.SeatsTotal
	cp.SeatsAvailable = cur.SeatsAvailable
	cp.Notes = slices.Clone(cur.Notes)
	cp.Version = cur.Version + 1
	r.Version = cp.Version
	repo.s.rides[r.ID] = cp
	return nil
}

func (repo *RideRepo) AppendNote(ctx context.Context, rideID string, n ride.Note) error {
	cur, err := repo.get(ctx, rideID)
	if err != nil {
		return err
	}
	cur.Notes = append(cur.Notes, n)
	return nil
}

func (repo *RideRepo) DebitSeats(ctx context.Context, rideID string, seats int) (int, error) {
	cur, err := repo.get(ctx, rideID)
	if err != nil {
		return 0, err
	}
	if err := cur.DebitSeats(seats, repo.s.now()); err != nil {
		return 0, err
	}
	return cur.SeatsAvailable, nil
}

func (repo *RideRepo) CreditSeats(ctx context.Context, rideID string, seats int) error {
	cur, err := repo.get(ctx, rideID)
	if err != nil {
		return err
	}
	return cur.CreditSeats(seats, repo.s.now())
}

func (repo *RideRepo) ResizeSeats(ctx context.Context, rideID string, capacity int) error {
	cur, err := repo.get(ctx, rideID)
	if err != nil {
		return err
	}
	return cur.Resize(capacity, repo.s.now())
}

func (repo *RideRepo) CountByStatus(ctx context.Context) (map[ride.Status]int, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	out := make(map[ride.Status]int)
	for _, r := range repo.s.rides {
		out[r.Status]++
	}
	return out, nil
}

func (repo *RideRepo) ListByStatus(ctx context.Context, page ports.Page, statuses ...ride.Status) ([]*ride.Ride, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	var out []*ride.Ride
	for _, r := range repo.s.rides {
		if len(statuses) == 0 || slices.Contains(statuses, r.Status) {
			out = append(out, r.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *ride.Ride) int {
		return cmp.Or(a.DepartureTime.Compare(b.DepartureTime), cmp.Compare(a.ID, b.ID))
	})
	return paginate(out, page), nil
}

func (repo *RideRepo) get(ctx context.Context, id string) (*ride.Ride, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	cur, ok := repo.s.rides[id]
	if !ok {
		return nil, ride.ErrRideNotFound
	}
	return cur, nil
}
