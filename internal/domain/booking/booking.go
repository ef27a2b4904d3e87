package booking

import (
	"strings"
	"time"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/geo"
)

// Booking is the domain entity corresponding to the `bookings` table.
type Booking struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	RideID      string
	PassengerID string
	DriverID    string // frozen copy of the ride's driver

	// Core state
	Status      Status
	SeatsBooked int
	TotalPrice  float64
	Pickup      geo.Point
	Dropoff     geo.Point

	// Rating flags
	IsRatedByPassenger bool
	IsRatedByDriver    bool

	// Lifecycle
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time

	// Additional info
	DriverNotes        *string
	CancellationReason *string
	CancelledBy        *string
}

var (
	ErrBookingNotFound         = apperr.New(apperr.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrInvalidStatusTransition = apperr.New(apperr.KindInvalidState, "BOOKING_INVALID_TRANSITION", "invalid booking status transition")
	ErrSelfBooking             = apperr.New(apperr.KindForbidden, "SELF_BOOKING", "drivers cannot book their own ride")
	ErrDuplicateActiveBooking  = apperr.New(apperr.KindDuplicate, "DUPLICATE_ACTIVE_BOOKING", "passenger already has an active booking on this ride")
	ErrNotBookingDriver        = apperr.New(apperr.KindForbidden, "NOT_BOOKING_DRIVER", "only the ride's driver can do this")
	ErrNotBookingParty         = apperr.New(apperr.KindForbidden, "NOT_BOOKING_PARTY", "only the passenger, the driver or an admin can do this")

	ErrPassengerRequired = apperr.New(apperr.KindInvalidInput, "PASSENGER_REQUIRED", "passenger id is required")
	ErrInvalidSeatCount  = apperr.New(apperr.KindInvalidInput, "INVALID_BOOKING_SEATS", "seats booked must be at least 1")
)

// NewBookingParams is the input for NewBooking. Pickup and dropoff default to the
// ride's source and destination when zero.
type NewBookingParams struct {
	RideID       string
	PassengerID  string
	DriverID     string
	SeatsBooked  int
	PricePerSeat float64
	Pickup       geo.Point
	Dropoff      geo.Point
	RideSource   geo.Point
	RideDest     geo.Point
}

// NewBooking creates a PENDING booking with price and driver frozen.
func NewBooking(p NewBookingParams, now time.Time) (*Booking, error) {
	passengerID := strings.TrimSpace(p.PassengerID)
	if passengerID == "" {
		return nil, ErrPassengerRequired
	}
	if passengerID == p.DriverID {
		return nil, ErrSelfBooking
	}
	if p.SeatsBooked < 1 {
		return nil, ErrInvalidSeatCount
	}

	pickup, err := pointOr(p.Pickup, p.RideSource)
	if err != nil {
		return nil, apperr.Invalid("pickup: %s", err.Error())
	}
	dropoff, err := pointOr(p.Dropoff, p.RideDest)
	if err != nil {
		return nil, apperr.Invalid("dropoff: %s", err.Error())
	}

	now = now.UTC()
	return &Booking{
		CreatedAt:   now,
		UpdatedAt:   now,
		RideID:      p.RideID,
		PassengerID: passengerID,
		DriverID:    p.DriverID,
		Status:      StatusPending,
		SeatsBooked: p.SeatsBooked,
		TotalPrice:  p.PricePerSeat * float64(p.SeatsBooked),
		Pickup:      pickup,
		Dropoff:     dropoff,
	}, nil
}

// IsActive reports whether the booking is PENDING or APPROVED.
func (b *Booking) IsActive() bool {
	return b.Status.Active()
}

// IsParty reports whether userID is the passenger or the driver of the booking.
func (b *Booking) IsParty(userID string) bool {
	return userID != "" && (b.PassengerID == userID || b.DriverID == userID)
}

// Counterparty returns the other side of the booking for userID. An empty result means
// userID is not a party, in which case both sides are the audience.
func (b *Booking) Counterparty(userID string) string {
	switch userID {
	case b.PassengerID:
		return b.DriverID
	case b.DriverID:
		return b.PassengerID
	default:
		return ""
	}
}

// Approve transitions PENDING -> APPROVED.
func (b *Booking) Approve(notes string, now time.Time) error {
	if err := b.transition(StatusApproved); err != nil {
		return err
	}
	now = now.UTC()
	b.ApprovedAt = &now
	b.DriverNotes = optional(notes)
	b.touch(now)
	return nil
}

// Reject transitions PENDING -> REJECTED.
func (b *Booking) Reject(notes string, now time.Time) error {
	if err := b.transition(StatusRejected); err != nil {
		return err
	}
	now = now.UTC()
	b.RejectedAt = &now
	b.DriverNotes = optional(notes)
	b.touch(now)
	return nil
}

// Cancel transitions PENDING|APPROVED -> CANCELLED. It reports whether seats were held,
// in which case the caller must credit them back to the ride.
func (b *Booking) Cancel(by, reason string, now time.Time) (bool, error) {
	heldSeats := b.Status.HoldsSeats()
	if err := b.transition(StatusCancelled); err != nil {
		return false, err
	}
	now = now.UTC()
	b.CancelledAt = &now
	b.CancelledBy = optional(by)
	b.CancellationReason = optional(reason)
	b.touch(now)
	return heldSeats, nil
}

// Complete transitions APPROVED -> COMPLETED.
func (b *Booking) Complete(now time.Time) error {
	if err := b.transition(StatusCompleted); err != nil {
		return err
	}
	now = now.UTC()
	b.CompletedAt = &now
	b.touch(now)
	return nil
}

// SetRated flips the rated flag for the given side of the booking.
func (b *Booking) SetRated(byPassenger, rated bool, now time.Time) {
	if byPassenger {
		b.IsRatedByPassenger = rated
	} else {
		b.IsRatedByDriver = rated
	}
	b.touch(now.UTC())
}

// RatedBy reports whether the given side has already rated.
func (b *Booking) RatedBy(byPassenger bool) bool {
	if byPassenger {
		return b.IsRatedByPassenger
	}
	return b.IsRatedByDriver
}

// Clone returns a deep copy of the booking.
func (b *Booking) Clone() *Booking {
	cp := *b
	cp.ApprovedAt = cloneTime(b.ApprovedAt)
	cp.RejectedAt = cloneTime(b.RejectedAt)
	cp.CancelledAt = cloneTime(b.CancelledAt)
	cp.CompletedAt = cloneTime(b.CompletedAt)
	cp.DriverNotes = cloneString(b.DriverNotes)
	cp.CancellationReason = cloneString(b.CancellationReason)
	cp.CancelledBy = cloneString(b.CancelledBy)
	return &cp
}

func (b *Booking) transition(next Status) error {
	if !b.Status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition.WithMsg("booking is %s and cannot become %s", b.Status, next)
	}
	b.Status = next
	return nil
}

func (b *Booking) touch(now time.Time) {
	b.UpdatedAt = now
}

func pointOr(p, fallback geo.Point) (geo.Point, error) {
	if p.IsZero() {
		return fallback, nil
	}
	if err := p.Validate(); err != nil {
		return geo.Point{}, err
	}
	return p, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
