package postgres

import (
	"context"
	"fmt"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/rating"
	"ride-share/internal/ports"
)

// BookingRepo persists bookings using pgx and plain SQL.
type BookingRepo struct{}

// NewBookingRepo constructs a new BookingRepo.
func NewBookingRepo() ports.BookingRepository {
	return &BookingRepo{}
}

const bookingColumns = `
	id, created_at, updated_at, ride_id, passenger_id, driver_id, status, seats_booked,
	total_price, pickup, dropoff, is_rated_by_passenger, is_rated_by_driver,
	approved_at, rejected_at, cancelled_at, completed_at,
	driver_notes, cancellation_reason, cancelled_by`

func scanBooking(row scanner) (*booking.Booking, error) {
	var (
		out    booking.Booking
		status string
	)
	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.RideID, &out.PassengerID, &out.DriverID,
		&status, &out.SeatsBooked, &out.TotalPrice, &out.Pickup, &out.Dropoff,
		&out.IsRatedByPassenger, &out.IsRatedByDriver,
		&out.ApprovedAt, &out.RejectedAt, &out.CancelledAt, &out.CompletedAt,
		&out.DriverNotes, &out.CancellationReason, &out.CancelledBy,
	)
	if err != nil {
		return nil, err
	}
	if out.Status, err = booking.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("booking %s: %w", out.ID, err)
	}
	return &out, nil
}

// Create inserts a booking. The partial unique index on (ride_id, passenger_id) for
// PENDING/APPROVED rows backs booking.ErrDuplicateActiveBooking.
func (repo *BookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (
			ride_id, passenger_id, driver_id, status, seats_booked, total_price, pickup, dropoff,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`,
		b.RideID,
		b.PassengerID,
		b.DriverID,
		b.Status.String(),
		b.SeatsBooked,
		b.TotalPrice,
		b.Pickup,
		b.Dropoff,
		b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		if isUniqueViolation(err, "bookings_one_active_idx") {
			return booking.ErrDuplicateActiveBooking
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID fetches a booking without locking it.
func (repo *BookingRepo) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	out, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, booking.ErrBookingNotFound)
	}
	return out, nil
}

// GetForUpdate fetches a booking and row-locks it.
func (repo *BookingRepo) GetForUpdate(ctx context.Context, id string) (*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	out, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, booking.ErrBookingNotFound)
	}
	return out, nil
}

// Update writes the mutable columns of a booking.
func (repo *BookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $2,
		    is_rated_by_passenger = $3,
		    is_rated_by_driver = $4,
		    approved_at = $5,
		    rejected_at = $6,
		    cancelled_at = $7,
		    completed_at = $8,
		    driver_notes = $9,
		    cancellation_reason = $10,
		    cancelled_by = $11,
		    updated_at = $12
		WHERE id = $1
	`,
		b.ID,
		b.Status.String(),
		b.IsRatedByPassenger,
		b.IsRatedByDriver,
		b.ApprovedAt,
		b.RejectedAt,
		b.CancelledAt,
		b.CompletedAt,
		b.DriverNotes,
		b.CancellationReason,
		b.CancelledBy,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "bookings_one_active_idx") {
			return booking.ErrDuplicateActiveBooking
		}
		return fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// HasActive reports whether the passenger holds a PENDING or APPROVED booking on the ride.
func (repo *BookingRepo) HasActive(ctx context.Context, rideID, passengerID string) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE ride_id = $1 AND passenger_id = $2 AND status IN ('PENDING', 'APPROVED')
		)
	`, rideID, passengerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active booking: %w", err)
	}
	return exists, nil
}

// ListByRide returns the bookings of a ride in creation order, optionally filtered by status.
func (repo *BookingRepo) ListByRide(ctx context.Context, rideID string, statuses ...booking.Status) ([]*booking.Booking, error) {
	return repo.byRide(ctx, rideID, false, statuses)
}

// LockByRide is ListByRide with FOR UPDATE on every returned row.
func (repo *BookingRepo) LockByRide(ctx context.Context, rideID string, statuses ...booking.Status) ([]*booking.Booking, error) {
	return repo.byRide(ctx, rideID, true, statuses)
}

func (repo *BookingRepo) byRide(ctx context.Context, rideID string, lock bool, statuses []booking.Status) ([]*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ride_id = $1
		  AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
		ORDER BY created_at, id`
	if lock {
		query += ` FOR UPDATE`
	}

	rows, err := tx.Query(ctx, query, rideID, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("query bookings by ride: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListByUser returns bookings where userID is the passenger or the driver, newest first.
func (repo *BookingRepo) ListByUser(ctx context.Context, userID string, page ports.Page) ([]*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE passenger_id = $1 OR driver_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query bookings by user: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// PendingRatings is a keyset page over completed bookings that userID has not rated yet.
func (repo *BookingRepo) PendingRatings(ctx context.Context, userID string, asPassenger bool, afterID string, limit int) ([]rating.Pending, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// side columns are fixed strings, never user input
	self, ratee, flag := "driver_id", "passenger_id", "is_rated_by_driver"
	if asPassenger {
		self, ratee, flag = "passenger_id", "driver_id", "is_rated_by_passenger"
	}

	rows, err := tx.Query(ctx, `
		SELECT id, ride_id, `+ratee+`, completed_at
		FROM bookings
		WHERE `+self+` = $1
		  AND status = 'COMPLETED'
		  AND NOT `+flag+`
		  AND id > $2
		ORDER BY id
		LIMIT $3
	`, userID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending ratings: %w", err)
	}
	defer rows.Close()

	var out []rating.Pending
	for rows.Next() {
		var (
			p           = rating.Pending{IsPassengerRating: asPassenger}
			completedAt *time.Time
		)
		if err := rows.Scan(&p.BookingID, &p.RideID, &p.RateeID, &completedAt); err != nil {
			return nil, fmt.Errorf("scan pending rating: %w", err)
		}
		if completedAt != nil {
			p.CompletedAt = *completedAt
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (repo *BookingRepo) CountByStatus(ctx context.Context) (map[booking.Status]int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return countByStatus(ctx, tx, "bookings", booking.ParseStatus)
}

type bookingRows interface {
	scanner
	Next() bool
	Err() error
}

func collectBookings(rows bookingRows) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
