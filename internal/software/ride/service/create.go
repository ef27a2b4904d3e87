package service

import (
	"context"
	"fmt"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/ports"
)

// Create publishes a new SCHEDULED ride for a verified driver.
func (service *rideService) Create(ctx context.Context, actor user.Actor, in ports.CreateRideInput) (*ride.Ride, error) {
	if err := actor.CanPublishRides(); err != nil {
		service.logFailure(ctx, "ride_create_failed", "Actor cannot publish rides", err, actor, "")
		return nil, err
	}

	now := service.now()
	r, err := ride.NewRide(ride.NewRideParams{
		DriverID:      actor.ID,
		Route:         in.Route,
		DepartureTime: in.DepartureTime,
		SeatsTotal:    in.SeatsTotal,
		PricePerSeat:  in.PricePerSeat,
		Preferences:   in.Preferences,
		Recurrence:    in.Recurrence,
	}, now)
	if err != nil {
		return nil, err
	}

	// estimate outside of the transaction; the estimator may call out over the network
	travel, err := service.travelTime(ctx, r.Route)
	if err != nil {
		service.logFailure(ctx, "ride_create_failed", "Failed to estimate travel time", err, actor, "")
		return nil, err
	}
	r.SetTravelTime(travel)

	var transitions []*event.Transition
	err = service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := service.rideRepo.Create(txCtx, r); err != nil {
			return err
		}
		transitions = []*event.Transition{
			event.ForRide(event.RideCreated, r, actor, now).
				WithField("seats_total", r.SeatsTotal).
				WithField("departure_time", r.DepartureTime),
		}
		return service.record(txCtx, transitions)
	})
	if err != nil {
		service.logFailure(ctx, "ride_create_failed", "Failed to create ride", err, actor, "")
		return nil, err
	}

	service.effects.Raise(ctx, transitions)

	service.logger.Info(service.logger.WithRideID(ctx, r.ID), "ride_created",
		fmt.Sprintf("Ride %s published with %d seats", r.ID, r.SeatsTotal),
		map[string]any{
			"driver_id":         r.DriverID,
			"departure_time":    r.DepartureTime,
			"estimated_arrival": r.EstimatedArrivalTime,
		},
	)

	return r, nil
}
