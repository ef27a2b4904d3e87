package postgres

import (
	"context"
	"fmt"

	"ride-share/internal/domain/rating"
	"ride-share/internal/ports"
)

// RatingRepo persists ratings using pgx and plain SQL.
type RatingRepo struct{}

// NewRatingRepo constructs a new RatingRepo.
func NewRatingRepo() ports.RatingRepository {
	return &RatingRepo{}
}

const ratingColumns = `
	id, created_at, updated_at, booking_id, rater_id, ratee_id, is_passenger_rating,
	score, categories, review`

func scanRating(row scanner) (*rating.Rating, error) {
	var out rating.Rating
	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.BookingID, &out.RaterID, &out.RateeID,
		&out.IsPassengerRating, &out.Score, &out.Categories, &out.Review,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create inserts a rating; a second row for the same (booking, rater, ratee) fails with
// rating.ErrDuplicateRating.
func (repo *RatingRepo) Create(ctx context.Context, r *rating.Rating) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO ratings (
			booking_id, rater_id, ratee_id, is_passenger_rating, score, categories, review,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`,
		r.BookingID,
		r.RaterID,
		r.RateeID,
		r.IsPassengerRating,
		r.Score,
		r.Categories,
		r.Review,
		r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		if isUniqueViolation(err, "ratings_unique_direction") {
			return rating.ErrDuplicateRating
		}
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

func (repo *RatingRepo) GetByID(ctx context.Context, id string) (*rating.Rating, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	out, err := scanRating(tx.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, rating.ErrRatingNotFound)
	}
	return out, nil
}

func (repo *RatingRepo) GetForUpdate(ctx context.Context, id string) (*rating.Rating, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	out, err := scanRating(tx.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, rating.ErrRatingNotFound)
	}
	return out, nil
}

func (repo *RatingRepo) Update(ctx context.Context, r *rating.Rating) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE ratings
		SET score = $2, categories = $3, review = $4, updated_at = $5
		WHERE id = $1
	`, r.ID, r.Score, r.Categories, r.Review, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rating.ErrRatingNotFound
	}
	return nil
}

func (repo *RatingRepo) Delete(ctx context.Context, id string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rating.ErrRatingNotFound
	}
	return nil
}

// ListByRatee returns the ratings received by a user, newest first.
func (repo *RatingRepo) ListByRatee(ctx context.Context, rateeID string, page ports.Page) ([]*rating.Rating, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+ratingColumns+`
		FROM ratings
		WHERE ratee_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, rateeID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query ratings by ratee: %w", err)
	}
	defer rows.Close()

	var out []*rating.Rating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
