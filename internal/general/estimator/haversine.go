// Package estimator provides travel time estimates between two points for rides.
package estimator

import (
	"context"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/ports"
)

// Haversine estimates travel time from the great-circle distance at a fixed average speed.
// It never fails and backs the other estimators.
type Haversine struct {
	AvgSpeedKMH float64
}

func NewHaversine(avgSpeedKMH float64) *Haversine {
	return &Haversine{AvgSpeedKMH: avgSpeedKMH}
}

func (h *Haversine) TravelTime(_ context.Context, from, to geo.Point) (time.Duration, error) {
	km := geo.HaversineKM(from, to)
	return time.Duration(geo.EstimateDurationMinutes(km, h.AvgSpeedKMH)) * time.Minute, nil
}

var _ ports.TravelEstimator = (*Haversine)(nil)
