package postgres

import (
	"context"
	"errors"
	"fmt"

	"ride-share/internal/domain/user"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// UserStatsRepo keeps the running rating sum and count per ratee.
type UserStatsRepo struct{}

// NewUserStatsRepo constructs a new UserStatsRepo.
func NewUserStatsRepo() ports.UserStatsRepository {
	return &UserStatsRepo{}
}

// Get returns the aggregate of userID; a user without ratings has a zero aggregate.
func (repo *UserStatsRepo) Get(ctx context.Context, userID string) (user.Stats, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return user.Stats{}, err
	}

	out := user.Stats{UserID: userID}
	err = tx.QueryRow(ctx, `
		SELECT rating_sum, total_ratings
		FROM user_rating_stats
		WHERE user_id = $1
	`, userID).Scan(&out.RatingSum, &out.TotalRatings)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return user.Stats{}, fmt.Errorf("get user stats: %w", err)
	}
	return out, nil
}

// Apply adds the deltas under a row lock. The row is created first so that concurrent
// first ratings of the same user serialize on it.
func (repo *UserStatsRepo) Apply(ctx context.Context, userID string, sumDelta, countDelta int) (user.Stats, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return user.Stats{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_rating_stats (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return user.Stats{}, fmt.Errorf("ensure user stats: %w", err)
	}

	cur := user.Stats{UserID: userID}
	if err := tx.QueryRow(ctx, `
		SELECT rating_sum, total_ratings
		FROM user_rating_stats
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&cur.RatingSum, &cur.TotalRatings); err != nil {
		return user.Stats{}, fmt.Errorf("lock user stats: %w", err)
	}

	next := cur.Apply(sumDelta, countDelta)
	if _, err := tx.Exec(ctx, `
		UPDATE user_rating_stats
		SET rating_sum = $2, total_ratings = $3, updated_at = now()
		WHERE user_id = $1
	`, userID, next.RatingSum, next.TotalRatings); err != nil {
		return user.Stats{}, fmt.Errorf("update user stats: %w", err)
	}
	return next, nil
}
