package service

import (
	"context"
	"fmt"
	"time"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
)

// record appends transitions to the audit log inside the current unit of work.
func (service *rideService) record(ctx context.Context, transitions []*event.Transition) error {
	for _, tr := range transitions {
		if err := service.eventRepo.Append(ctx, tr); err != nil {
			return fmt.Errorf("append %s event: %w", tr.Type, err)
		}
	}
	return nil
}

// travelTime sums the estimated legs source -> waypoints -> destination.
func (service *rideService) travelTime(ctx context.Context, route ride.Route) (time.Duration, error) {
	stops := make([]ride.Route, 0, len(route.Waypoints)+1)
	from := route.Source
	for _, wp := range route.Waypoints {
		stops = append(stops, ride.Route{Source: from, Destination: wp})
		from = wp
	}
	stops = append(stops, ride.Route{Source: from, Destination: route.Destination})

	var total time.Duration
	for _, leg := range stops {
		d, err := service.estimator.TravelTime(ctx, leg.Source, leg.Destination)
		if err != nil {
			return 0, fmt.Errorf("estimate travel time: %w", err)
		}
		total += d
	}
	return total, nil
}

// loadOwned loads the ride with a row lock and checks the actor may manage it.
func (service *rideService) loadOwned(ctx context.Context, actor user.Actor, rideID string, allowAdmin bool) (*ride.Ride, error) {
	r, err := service.rideRepo.GetForUpdate(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.IsDriver(actor.ID) || (allowAdmin && actor.IsAdmin()) {
		return r, nil
	}
	return nil, ride.ErrNotRideDriver
}

func (service *rideService) logFailure(ctx context.Context, action, msg string, err error, actor user.Actor, rideID string) {
	service.logger.Error(ctx, action, msg, err, map[string]any{
		"ride_id":  rideID,
		"actor_id": actor.ID,
		"role":     actor.Role,
	})
}
