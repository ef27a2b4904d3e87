package postgres

import (
	"context"
	"errors"
	"fmt"

	"ride-share/internal/domain/ride"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// RideRepo persists rides using pgx and plain SQL.
type RideRepo struct{}

// NewRideRepo constructs a new RideRepo.
func NewRideRepo() ports.RideRepository {
	return &RideRepo{}
}

const rideColumns = `
	id, created_at, updated_at, version, driver_id, route, departure_time, estimated_arrival_time,
	seats_total, seats_available, price_per_seat, status,
	smoking_allowed, pets_allowed, music_allowed, luggage_allowed, women_only, recurrence,
	started_at, completed_at, cancelled_at, cancellation_reason`

func scanRide(row scanner) (*ride.Ride, error) {
	var (
		out    ride.Ride
		status string
	)
	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.Version, &out.DriverID, &out.Route,
		&out.DepartureTime, &out.EstimatedArrivalTime,
		&out.SeatsTotal, &out.SeatsAvailable, &out.PricePerSeat, &status,
		&out.Preferences.SmokingAllowed, &out.Preferences.PetsAllowed, &out.Preferences.MusicAllowed,
		&out.Preferences.LuggageAllowed, &out.Preferences.WomenOnly, &out.Recurrence,
		&out.StartedAt, &out.CompletedAt, &out.CancelledAt, &out.CancellationReason,
	)
	if err != nil {
		return nil, err
	}
	if out.Status, err = ride.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("ride %s: %w", out.ID, err)
	}
	return &out, nil
}

// Create inserts a new ride row. The id and audit timestamps are assigned by the database.
func (repo *RideRepo) Create(ctx context.Context, r *ride.Ride) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rides (
			driver_id, route, departure_time, estimated_arrival_time,
			seats_total, seats_available, price_per_seat, status,
			smoking_allowed, pets_allowed, music_allowed, luggage_allowed, women_only, recurrence
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at, version
	`,
		r.DriverID,
		r.Route, // pgx marshals to jsonb
		r.DepartureTime,
		r.EstimatedArrivalTime,
		r.SeatsTotal,
		r.SeatsAvailable,
		r.PricePerSeat,
		r.Status.String(),
		r.Preferences.SmokingAllowed,
		r.Preferences.PetsAllowed,
		r.Preferences.MusicAllowed,
		r.Preferences.LuggageAllowed,
		r.Preferences.WomenOnly,
		r.Recurrence,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.Version)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

// GetByID fetches a ride with its notes.
func (repo *RideRepo) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	return repo.get(ctx, id, false)
}

// GetForUpdate fetches a ride and row-locks it until the unit of work ends.
func (repo *RideRepo) GetForUpdate(ctx context.Context, id string) (*ride.Ride, error) {
	return repo.get(ctx, id, true)
}

func (repo *RideRepo) get(ctx context.Context, id string, lock bool) (*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	out, err := scanRide(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, ride.ErrRideNotFound)
	}

	if out.Notes, err = repo.notes(ctx, tx, id); err != nil {
		return nil, err
	}
	return out, nil
}

func (repo *RideRepo) notes(ctx context.Context, tx pgx.Tx, rideID string) ([]ride.Note, error) {
	rows, err := tx.Query(ctx, `
		SELECT author_id, text, created_at
		FROM ride_notes
		WHERE ride_id = $1
		ORDER BY id
	`, rideID)
	if err != nil {
		return nil, fmt.Errorf("query ride notes: %w", err)
	}
	defer rows.Close()

	var notes []ride.Note
	for rows.Next() {
		var n ride.Note
		if err := rows.Scan(&n.AuthorID, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ride note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return notes, nil
}

// Update writes everything except the seat columns and notes, and bumps the version.
func (repo *RideRepo) Update(ctx context.Context, r *ride.Ride) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		UPDATE rides
		SET route = $2,
		    departure_time = $3,
		    estimated_arrival_time = $4,
		    price_per_seat = $5,
		    status = $6,
		    smoking_allowed = $7,
		    pets_allowed = $8,
		    music_allowed = $9,
		    luggage_allowed = $10,
		    women_only = $11,
		    recurrence = $12,
		    started_at = $13,
		    completed_at = $14,
		    cancelled_at = $15,
		    cancellation_reason = $16,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
		RETURNING version, updated_at
	`,
		r.ID,
		r.Route,
		r.DepartureTime,
		r.EstimatedArrivalTime,
		r.PricePerSeat,
		r.Status.String(),
		r.Preferences.SmokingAllowed,
		r.Preferences.PetsAllowed,
		r.Preferences.MusicAllowed,
		r.Preferences.LuggageAllowed,
		r.Preferences.WomenOnly,
		r.Recurrence,
		r.StartedAt,
		r.CompletedAt,
		r.CancelledAt,
		r.CancellationReason,
	).Scan(&r.Version, &r.UpdatedAt)
	if err != nil {
		return notFound(err, ride.ErrRideNotFound)
	}
	return nil
}

// AppendNote inserts an audit note. Notes are allowed in any ride state.
func (repo *RideRepo) AppendNote(ctx context.Context, rideID string, n ride.Note) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO ride_notes (ride_id, author_id, text, created_at)
		SELECT id, $2, $3, $4 FROM rides WHERE id = $1
	`, rideID, n.AuthorID, n.Text, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ride note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ride.ErrRideNotFound
	}
	return nil
}

// DebitSeats takes seats with a single conditional UPDATE so that concurrent debits can
// never oversell. When no row matches, the ride is re-read to report why.
func (repo *RideRepo) DebitSeats(ctx context.Context, rideID string, seats int) (int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var left int
	err = tx.QueryRow(ctx, `
		UPDATE rides
		SET seats_available = seats_available - $2,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'SCHEDULED'
		  AND seats_available >= $2
		RETURNING seats_available
	`, rideID, seats).Scan(&left)
	if err == nil {
		return left, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("debit seats: %w", err)
	}

	status, available, _, err := repo.seatState(ctx, tx, rideID)
	if err != nil {
		return 0, err
	}
	if status != ride.StatusScheduled {
		return 0, ride.ErrRideNotBookable.WithMsg("ride is %s and cannot take bookings", status)
	}
	return 0, ride.ErrInsufficientSeats.WithMsg("requested %d seats, %d available", seats, available)
}

// CreditSeats returns seats, capped at seats_total.
func (repo *RideRepo) CreditSeats(ctx context.Context, rideID string, seats int) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET seats_available = LEAST(seats_available + $2, seats_total),
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
	`, rideID, seats)
	if err != nil {
		return fmt.Errorf("credit seats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ride.ErrRideNotFound
	}
	return nil
}

// ResizeSeats sets a new capacity in one statement; committed seats (total - available)
// are preserved, so the capacity may not drop below them.
func (repo *RideRepo) ResizeSeats(ctx context.Context, rideID string, capacity int) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET seats_available = $2::int - (seats_total - seats_available),
		    seats_total = $2::int,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'SCHEDULED'
		  AND $2::int >= seats_total - seats_available
	`, rideID, capacity)
	if err != nil {
		return fmt.Errorf("resize seats: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	status, available, total, err := repo.seatState(ctx, tx, rideID)
	if err != nil {
		return err
	}
	if status != ride.StatusScheduled {
		return ride.ErrRideNotEditable.WithMsg("ride is %s; only scheduled rides can be changed", status)
	}
	return ride.ErrBelowBookedSeats.WithMsg("capacity %d is below %d booked seats", capacity, total-available)
}

func (repo *RideRepo) CountByStatus(ctx context.Context) (map[ride.Status]int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return countByStatus(ctx, tx, "rides", ride.ParseStatus)
}

// ListByStatus pages through rides without their notes.
func (repo *RideRepo) ListByStatus(ctx context.Context, page ports.Page, statuses ...ride.Status) ([]*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()

	rows, err := tx.Query(ctx, `
		SELECT `+rideColumns+`
		FROM rides
		WHERE cardinality($1::text[]) = 0 OR status = ANY($1::text[])
		ORDER BY departure_time, id
		LIMIT $2 OFFSET $3
	`, statusStrings(statuses), page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query rides by status: %w", err)
	}
	defer rows.Close()

	var out []*ride.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (repo *RideRepo) seatState(ctx context.Context, tx pgx.Tx, rideID string) (ride.Status, int, int, error) {
	var (
		status           string
		available, total int
	)
	err := tx.QueryRow(ctx, `
		SELECT status, seats_available, seats_total
		FROM rides
		WHERE id = $1
	`, rideID).Scan(&status, &available, &total)
	if err != nil {
		return "", 0, 0, notFound(err, ride.ErrRideNotFound)
	}
	st, err := ride.ParseStatus(status)
	if err != nil {
		return "", 0, 0, err
	}
	return st, available, total, nil
}
