package estimator

import (
	"context"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// Fallback asks primary first and answers from secondary when primary fails.
type Fallback struct {
	primary   ports.TravelEstimator
	secondary ports.TravelEstimator
	logger    *logger.Logger
}

func NewFallback(primary, secondary ports.TravelEstimator, log *logger.Logger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, logger: log}
}

func (f *Fallback) TravelTime(ctx context.Context, from, to geo.Point) (time.Duration, error) {
	d, err := f.primary.TravelTime(ctx, from, to)
	if err == nil {
		return d, nil
	}
	f.logger.Error(ctx, "estimator_fallback", "Primary travel time estimator failed", err, map[string]any{
		"from": from.Address,
		"to":   to.Address,
	})
	return f.secondary.TravelTime(ctx, from, to)
}

var _ ports.TravelEstimator = (*Fallback)(nil)
