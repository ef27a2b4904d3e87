package postgres

import (
	"context"
	"fmt"

	"ride-share/internal/domain/event"
	"ride-share/internal/ports"
)

// EventRepo persists transitions to the booking_events audit table.
type EventRepo struct{}

// NewEventRepo constructs a new EventRepo.
func NewEventRepo() ports.EventRepository {
	return &EventRepo{}
}

// Append inserts a new booking_events row.
func (repo *EventRepo) Append(ctx context.Context, tr *event.Transition) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	// validate event before inserting
	if err := tr.Validate(); err != nil {
		return err
	}

	data, err := tr.DataJSON()
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO booking_events (ride_id, booking_id, rating_id, event_type, event_data, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5::jsonb, $6)
		RETURNING id::text
	`,
		tr.RideID,
		tr.BookingID,
		tr.RatingID,
		tr.Type.String(),
		string(data),
		tr.OccurredAt,
	).Scan(&tr.ID)
	if err != nil {
		return fmt.Errorf("insert booking event: %w", err)
	}
	return nil
}
