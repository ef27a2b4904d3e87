package service

import (
	"context"
	"fmt"
	"iter"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// PendingFor lists completed bookings the actor has not rated yet: first those where the
// actor was the passenger, then those where the actor was the driver. Pages are fetched
// lazily, each in its own short unit of work, and iteration can be restarted.
func (service *ratingService) PendingFor(ctx context.Context, actor user.Actor) iter.Seq2[rating.Pending, error] {
	return func(yield func(rating.Pending, error) bool) {
		if err := actor.Validate(); err != nil {
			yield(rating.Pending{}, err)
			return
		}

		for _, asPassenger := range []bool{true, false} {
			after := ""
			for {
				var page []rating.Pending
				err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
					var err error
					page, err = service.bookingRepo.PendingRatings(txCtx, actor.ID, asPassenger, after, service.pageSize)
					return err
				})
				if err != nil {
					yield(rating.Pending{}, err)
					return
				}
				for _, p := range page {
					if !yield(p, nil) {
						return
					}
				}
				if len(page) < service.pageSize {
					break
				}
				after = page[len(page)-1].BookingID
			}
		}
	}
}

// Summary returns the rating aggregate of a user.
func (service *ratingService) Summary(ctx context.Context, userID string) (ports.RatingSummary, error) {
	var stats user.Stats
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		stats, err = service.statsRepo.Get(txCtx, userID)
		return err
	})
	if err != nil {
		return ports.RatingSummary{}, err
	}
	return ports.RatingSummary{
		UserID:       userID,
		AvgRating:    stats.AvgRating(),
		TotalRatings: stats.TotalRatings,
	}, nil
}

// ListForUser returns ratings received by a user, newest first.
func (service *ratingService) ListForUser(ctx context.Context, userID string, page ports.Page) ([]*rating.Rating, error) {
	var out []*rating.Rating
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = service.ratingRepo.ListByRatee(txCtx, userID, page.Normalize())
		return err
	})
	return out, err
}

// record appends transitions to the audit log inside the current unit of work.
func (service *ratingService) record(ctx context.Context, tr *event.Transition) error {
	if err := service.eventRepo.Append(ctx, tr); err != nil {
		return fmt.Errorf("append %s event: %w", tr.Type, err)
	}
	return nil
}

func (service *ratingService) logFailure(ctx context.Context, action, msg string, err error, actor user.Actor) {
	service.logger.Error(ctx, action, msg, err, map[string]any{
		"actor_id": actor.ID,
		"role":     actor.Role,
	})
}
