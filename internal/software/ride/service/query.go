package service

import (
	"context"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
)

// Get returns a ride by id.
func (service *rideService) Get(ctx context.Context, rideID string) (*ride.Ride, error) {
	var r *ride.Ride
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		r, err = service.rideRepo.GetByID(txCtx, rideID)
		return err
	})
	return r, err
}

// AddNote appends an audit note. Notes are accepted in every ride state.
func (service *rideService) AddNote(ctx context.Context, actor user.Actor, rideID, text string) (ride.Note, error) {
	ctx = service.logger.WithRideID(ctx, rideID)
	if err := actor.Validate(); err != nil {
		return ride.Note{}, err
	}

	var note ride.Note
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.loadOwned(txCtx, actor, rideID, true)
		if err != nil {
			return err
		}
		note, err = r.AddNote(actor.ID, text, service.now())
		if err != nil {
			return err
		}
		return service.rideRepo.AppendNote(txCtx, rideID, note)
	})
	if err != nil {
		service.logFailure(ctx, "ride_note_failed", "Failed to add ride note", err, actor, rideID)
		return ride.Note{}, err
	}

	service.logger.Debug(ctx, "ride_note_added", "Audit note added", map[string]any{"author_id": actor.ID})
	return note, nil
}
