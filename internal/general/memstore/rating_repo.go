package memstore

import (
	"cmp"
	"context"
	"slices"

	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// RatingRepo stores ratings in memory.
type RatingRepo struct {
	s *Store
}

func (repo *RatingRepo) Create(ctx context.Context, r *rating.Rating) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	for _, cur := range repo.s.ratings {
		if cur.BookingID == r.BookingID && cur.RaterID == r.RaterID && cur.RateeID == r.RateeID {
			return rating.ErrDuplicateRating
		}
	}
	if r.ID == "" {
		r.ID = newID()
	}
	repo.s.ratings[r.ID] = r.Clone()
	return nil
}

func (repo *RatingRepo) GetByID(ctx context.Context, id string) (*rating.Rating, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	cur, ok := repo.s.ratings[id]
	if !ok {
		return nil, rating.ErrRatingNotFound
	}
	return cur.Clone(), nil
}

func (repo *RatingRepo) GetForUpdate(ctx context.Context, id string) (*rating.Rating, error) {
	return repo.GetByID(ctx, id)
}

func (repo *RatingRepo) Update(ctx context.Context, r *rating.Rating) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	if _, ok := repo.s.ratings[r.ID]; !ok {
		return rating.ErrRatingNotFound
	}
	repo.s.ratings[r.ID] = r.Clone()
	return nil
}

func (repo *RatingRepo) Delete(ctx context.Context, id string) error {
	if err := requireTx(ctx); err != nil {
		return err
	}
	if _, ok := repo.s.ratings[id]; !ok {
		return rating.ErrRatingNotFound
	}
	delete(repo.s.ratings, id)
	return nil
}

func (repo *RatingRepo) ListByRatee(ctx context.Context, rateeID string, page ports.Page) ([]*rating.Rating, error) {
	if err := requireTx(ctx); err != nil {
		return nil, err
	}
	var out []*rating.Rating
	for _, r := range repo.s.ratings {
		if r.RateeID == rateeID {
			out = append(out, r.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *rating.Rating) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return paginate(out, page), nil
}

// UserStatsRepo stores rating aggregates in memory.
type UserStatsRepo struct {
	s *Store
}

func (repo *UserStatsRepo) Get(ctx context.Context, userID string) (user.Stats, error) {
	if err := requireTx(ctx); err != nil {
		return user.Stats{}, err
	}
	st := repo.s.stats[userID]
	st.UserID = userID
	return st, nil
}

func (repo *UserStatsRepo) Apply(ctx context.Context, userID string, sumDelta, countDelta int) (user.Stats, error) {
	st, err := repo.Get(ctx, userID)
	if err != nil {
		return user.Stats{}, err
	}
	st = st.Apply(sumDelta, countDelta)
	repo.s.stats[userID] = st
	return st, nil
}
