package service

import (
	"context"
	"fmt"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// Submit rates the other party of a COMPLETED booking and adds the score to the ratee's aggregate.
func (service *ratingService) Submit(ctx context.Context, actor user.Actor, in ports.SubmitRatingInput) (*rating.Rating, error) {
	ctx = service.logger.WithBookingID(ctx, in.BookingID)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var (
		r     *rating.Rating
		tr    *event.Transition
		stats user.Stats
		now   = service.now()
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		b, err := service.bookingRepo.GetForUpdate(txCtx, in.BookingID)
		if err != nil {
			return err
		}
		rateeID, isPassengerRating, err := rating.Direction(b, actor.ID)
		if err != nil {
			return err
		}

		r, err = rating.NewRating(rating.NewRatingParams{
			BookingID:         b.ID,
			RaterID:           actor.ID,
			RateeID:           rateeID,
			IsPassengerRating: isPassengerRating,
			Score:             in.Score,
			Categories:        in.Categories,
			Review:            in.Review,
		}, now)
		if err != nil {
			return err
		}
		if err := service.ratingRepo.Create(txCtx, r); err != nil {
			return err
		}

		b.SetRated(isPassengerRating, true, now)
		if err := service.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}
		if stats, err = service.statsRepo.Apply(txCtx, rateeID, r.Score, 1); err != nil {
			return err
		}

		tr = event.ForRating(event.RatingSubmitted, r, b, actor, now)
		return service.record(txCtx, tr)
	})
	if err != nil {
		service.logFailure(ctx, "rating_submit_failed", "Failed to submit rating", err, actor)
		return nil, err
	}

	service.effects.Raise(ctx, []*event.Transition{tr})

	service.logger.Info(ctx, "rating_submitted",
		fmt.Sprintf("User %s rated %s with %d", actor.ID, r.RateeID, r.Score),
		map[string]any{
			"rating_id":     r.ID,
			"avg_rating":    stats.AvgRating(),
			"total_ratings": stats.TotalRatings,
		},
	)

	return r, nil
}
