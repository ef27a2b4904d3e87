package service

import (
	"context"
	"fmt"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/user"
)

// Update changes a rating within its edit window and moves the ratee aggregate by the score delta.
func (service *ratingService) Update(ctx context.Context, actor user.Actor, ratingID string, patch rating.Patch) (*rating.Rating, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var (
		r     *rating.Rating
		delta int
		now   = service.now()
	)
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		r, err = service.ratingRepo.GetForUpdate(txCtx, ratingID)
		if err != nil {
			return err
		}
		if r.RaterID != actor.ID {
			return rating.ErrNotOwner
		}
		if delta, err = r.Apply(patch, now); err != nil {
			return err
		}
		if err := service.ratingRepo.Update(txCtx, r); err != nil {
			return err
		}
		if delta != 0 {
			if _, err := service.statsRepo.Apply(txCtx, r.RateeID, delta, 0); err != nil {
				return err
			}
		}

		b, err := service.bookingRepo.GetByID(txCtx, r.BookingID)
		if err != nil {
			return err
		}
		return service.record(txCtx, event.ForRating(event.RatingUpdated, r, b, actor, now).WithField("score_delta", delta))
	})
	if err != nil {
		service.logFailure(ctx, "rating_update_failed", "Failed to update rating", err, actor)
		return nil, err
	}

	service.logger.Info(ctx, "rating_updated", fmt.Sprintf("Rating %s updated", r.ID), map[string]any{
		"score_delta": delta,
	})
	return r, nil
}

// Delete removes a rating on behalf of its author or an admin. The booking's rated flag is
// cleared and the score leaves the ratee aggregate.
func (service *ratingService) Delete(ctx context.Context, actor user.Actor, ratingID string) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	now := service.now()
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.ratingRepo.GetForUpdate(txCtx, ratingID)
		if err != nil {
			return err
		}
		if r.RaterID != actor.ID && !actor.IsAdmin() {
			return rating.ErrNotOwner
		}

		b, err := service.bookingRepo.GetForUpdate(txCtx, r.BookingID)
		if err != nil {
			return err
		}
		b.SetRated(r.IsPassengerRating, false, now)
		if err := service.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}
		if err := service.ratingRepo.Delete(txCtx, r.ID); err != nil {
			return err
		}
		if _, err := service.statsRepo.Apply(txCtx, r.RateeID, -r.Score, -1); err != nil {
			return err
		}
		return service.record(txCtx, event.ForRating(event.RatingDeleted, r, b, actor, now))
	})
	if err != nil {
		service.logFailure(ctx, "rating_delete_failed", "Failed to delete rating", err, actor)
		return err
	}

	service.logger.Info(ctx, "rating_deleted", fmt.Sprintf("Rating %s deleted", ratingID), nil)
	return nil
}
