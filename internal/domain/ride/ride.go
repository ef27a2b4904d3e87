package ride

import (
	"math"
	"slices"
	"strings"
	"time"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/geo"
)

// Route is the path of a ride: source, destination and ordered intermediate stops.
type Route struct {
	Source      geo.Point   `json:"source"`
	Destination geo.Point   `json:"destination"`
	Waypoints   []geo.Point `json:"waypoints,omitempty"`
}

// Validate checks every stop of the route.
func (route Route) Validate() error {
	if err := route.Source.Validate(); err != nil {
		return apperr.Invalid("source: %s", err.Error())
	}
	if err := route.Destination.Validate(); err != nil {
		return apperr.Invalid("destination: %s", err.Error())
	}
	for i, wp := range route.Waypoints {
		if err := wp.Validate(); err != nil {
			return apperr.Invalid("waypoint %d: %s", i, err.Error())
		}
	}
	return nil
}

// Note is an audit note attached to a ride. Notes may be appended in any state.
type Note struct {
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Ride is the domain entity corresponding to the `rides` table.
type Ride struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int

	// Actors
	DriverID string

	// Trip
	Route                Route
	DepartureTime        time.Time
	EstimatedArrivalTime time.Time
	Preferences          Preferences
	Recurrence           *Recurrence

	// Seat inventory
	SeatsTotal     int
	SeatsAvailable int
	PricePerSeat   float64

	// Core state
	Status Status

	// Lifecycle timestamps
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	// Additional info
	CancellationReason *string
	Notes              []Note
}

var (
	ErrRideNotFound            = apperr.New(apperr.KindNotFound, "RIDE_NOT_FOUND", "ride not found")
	ErrInvalidStatusTransition = apperr.New(apperr.KindInvalidState, "RIDE_INVALID_TRANSITION", "invalid ride status transition")
	ErrRideNotEditable         = apperr.New(apperr.KindInvalidState, "RIDE_NOT_EDITABLE", "only scheduled rides can be changed")
	ErrRideNotBookable         = apperr.New(apperr.KindInvalidState, "RIDE_NOT_BOOKABLE", "ride is not open for booking")
	ErrInsufficientSeats       = apperr.New(apperr.KindInsufficientSeats, "INSUFFICIENT_SEATS", "not enough seats available")
	ErrBelowBookedSeats        = apperr.New(apperr.KindBelowBookedSeats, "BELOW_BOOKED_SEATS", "capacity cannot go below already booked seats")
	ErrNotRideDriver           = apperr.New(apperr.KindForbidden, "NOT_RIDE_DRIVER", "only the ride's driver can do this")

	ErrDriverRequired       = apperr.New(apperr.KindInvalidInput, "DRIVER_REQUIRED", "driver id is required")
	ErrDepartureNotInFuture = apperr.New(apperr.KindInvalidInput, "DEPARTURE_NOT_IN_FUTURE", "departure time must be in the future")
	ErrInvalidSeatCount     = apperr.New(apperr.KindInvalidInput, "INVALID_SEAT_COUNT", "seat count must be at least 1")
	ErrInvalidPrice         = apperr.New(apperr.KindInvalidInput, "INVALID_PRICE", "price per seat must be a non-negative number")
	ErrEmptyNote            = apperr.New(apperr.KindInvalidInput, "EMPTY_NOTE", "note text cannot be empty")
)

// NewRideParams is the validated input for NewRide.
type NewRideParams struct {
	DriverID      string
	Route         Route
	DepartureTime time.Time
	SeatsTotal    int
	PricePerSeat  float64
	Preferences   Preferences
	Recurrence    *Recurrence
}

// NewRide creates a new ride in SCHEDULED state with every seat available.
// The estimated arrival time is set separately through SetTravelTime.
func NewRide(params NewRideParams, now time.Time) (*Ride, error) {
	driverID := strings.TrimSpace(params.DriverID)
	if driverID == "" {
		return nil, ErrDriverRequired
	}
	if err := params.Route.Validate(); err != nil {
		return nil, err
	}
	if !params.DepartureTime.After(now) {
		return nil, ErrDepartureNotInFuture
	}
	if params.SeatsTotal < 1 {
		return nil, ErrInvalidSeatCount
	}
	if err := validatePrice(params.PricePerSeat); err != nil {
		return nil, err
	}
	if err := params.Recurrence.Validate(params.DepartureTime); err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Ride{
		CreatedAt:      now,
		UpdatedAt:      now,
		DriverID:       driverID,
		Route:          cloneRoute(params.Route),
		DepartureTime:  params.DepartureTime.UTC(),
		Preferences:    params.Preferences,
		Recurrence:     params.Recurrence.Clone(),
		SeatsTotal:     params.SeatsTotal,
		SeatsAvailable: params.SeatsTotal,
		PricePerSeat:   params.PricePerSeat,
		Status:         StatusScheduled,
	}, nil
}

// SetTravelTime derives the estimated arrival from the departure time.
func (ride *Ride) SetTravelTime(travel time.Duration) {
	if travel < 0 {
		travel = 0
	}
	ride.EstimatedArrivalTime = ride.DepartureTime.Add(travel)
}

// IsDriver reports whether userID owns the ride.
func (ride *Ride) IsDriver(userID string) bool {
	return userID != "" && ride.DriverID == userID
}

// CommittedSeats is the number of seats held by approved or completed bookings.
func (ride *Ride) CommittedSeats() int {
	return ride.SeatsTotal - ride.SeatsAvailable
}

// Editable reports whether the ride may still be mutated.
func (ride *Ride) Editable() error {
	if ride.Status != StatusScheduled {
		return ErrRideNotEditable.WithMsg("ride is %s; only scheduled rides can be changed", ride.Status)
	}
	return nil
}

// ----- seat ledger arithmetic -----

// CanReserve checks that seats can be taken from the ride right now.
func (ride *Ride) CanReserve(seats int) error {
	if seats < 1 {
		return ErrInvalidSeatCount
	}
	if ride.Status != StatusScheduled {
		return ErrRideNotBookable.WithMsg("ride is %s and cannot take bookings", ride.Status)
	}
	if seats > ride.SeatsAvailable {
		return ErrInsufficientSeats.WithMsg("requested %d seats, %d available", seats, ride.SeatsAvailable)
	}
	return nil
}

// DebitSeats takes seats from the available pool.
func (ride *Ride) DebitSeats(seats int, now time.Time) error {
	if err := ride.CanReserve(seats); err != nil {
		return err
	}
	ride.SeatsAvailable -= seats
	ride.bump(now)
	return nil
}

// CreditSeats returns seats to the pool, capped at the total.
func (ride *Ride) CreditSeats(seats int, now time.Time) error {
	if seats < 1 {
		return ErrInvalidSeatCount
	}
	ride.SeatsAvailable = min(ride.SeatsAvailable+seats, ride.SeatsTotal)
	ride.bump(now)
	return nil
}

// Resize sets a new total capacity. Seats already committed to bookings stay committed,
// so the capacity can shrink down to, but not below, the committed count.
func (ride *Ride) Resize(capacity int, now time.Time) error {
	if err := ride.Editable(); err != nil {
		return err
	}
	if capacity < 1 {
		return ErrInvalidSeatCount
	}
	committed := ride.CommittedSeats()
	if capacity < committed {
		return ErrBelowBookedSeats.WithMsg("capacity %d is below %d booked seats", capacity, committed)
	}
	ride.SeatsTotal = capacity
	ride.SeatsAvailable = capacity - committed
	ride.bump(now)
	return nil
}

// ----- updates -----

// Patch is a driver-initiated change to a scheduled ride. Nil fields are left unchanged.
// Seat capacity is handled by the seat ledger, not by Apply.
type Patch struct {
	Route           *Route
	DepartureTime   *time.Time
	SeatsTotal      *int
	PricePerSeat    *float64
	Preferences     *Preferences
	Recurrence      *Recurrence
	ClearRecurrence bool
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.Route == nil && p.DepartureTime == nil && p.SeatsTotal == nil && p.PricePerSeat == nil &&
		p.Preferences == nil && p.Recurrence == nil && !p.ClearRecurrence
}

// Apply mutates the ride according to p and reports whether the schedule (route or
// departure) changed, in which case the estimated arrival must be recomputed.
func (ride *Ride) Apply(p Patch, now time.Time) (bool, error) {
	if err := ride.Editable(); err != nil {
		return false, err
	}

	scheduleChanged := false
	if p.Route != nil {
		if err := p.Route.Validate(); err != nil {
			return false, err
		}
		ride.Route = cloneRoute(*p.Route)
		scheduleChanged = true
	}
	if p.DepartureTime != nil {
		if !p.DepartureTime.After(now) {
			return false, ErrDepartureNotInFuture
		}
		ride.DepartureTime = p.DepartureTime.UTC()
		scheduleChanged = true
	}
	if p.PricePerSeat != nil {
		if err := validatePrice(*p.PricePerSeat); err != nil {
			return false, err
		}
		ride.PricePerSeat = *p.PricePerSeat
	}
	if p.Preferences != nil {
		ride.Preferences = *p.Preferences
	}
	switch {
	case p.ClearRecurrence:
		ride.Recurrence = nil
	case p.Recurrence != nil:
		if err := p.Recurrence.Validate(ride.DepartureTime); err != nil {
			return false, err
		}
		ride.Recurrence = p.Recurrence.Clone()
	}

	ride.bump(now)
	return scheduleChanged, nil
}

// ----- lifecycle -----

// Start transitions SCHEDULED -> IN_PROGRESS.
func (ride *Ride) Start(now time.Time) error {
	if !ride.Status.CanTransitionTo(StatusInProgress) {
		return ErrInvalidStatusTransition.WithMsg("cannot start a %s ride", ride.Status)
	}
	now = now.UTC()
	ride.StartedAt = &now
	ride.setStatus(StatusInProgress, now)
	return nil
}

// Complete transitions IN_PROGRESS -> COMPLETED.
func (ride *Ride) Complete(now time.Time) error {
	if !ride.Status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidStatusTransition.WithMsg("cannot complete a %s ride", ride.Status)
	}
	now = now.UTC()
	ride.CompletedAt = &now
	ride.setStatus(StatusCompleted, now)
	return nil
}

// Cancel transitions SCHEDULED -> CANCELLED.
func (ride *Ride) Cancel(reason string, now time.Time) error {
	if !ride.Status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition.WithMsg("cannot cancel a %s ride", ride.Status)
	}
	now = now.UTC()
	ride.CancelledAt = &now
	if rs := strings.TrimSpace(reason); rs != "" {
		ride.CancellationReason = &rs
	}
	ride.setStatus(StatusCancelled, now)
	return nil
}

// AddNote appends an audit note.
func (ride *Ride) AddNote(authorID, text string, now time.Time) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrEmptyNote
	}
	n := Note{AuthorID: authorID, Text: text, CreatedAt: now.UTC()}
	ride.Notes = append(ride.Notes, n)
	ride.bump(now)
	return n, nil
}

// Clone returns a deep copy of the ride.
func (ride *Ride) Clone() *Ride {
	cp := *ride
	cp.Route = cloneRoute(ride.Route)
	cp.Recurrence = ride.Recurrence.Clone()
	cp.Notes = slices.Clone(ride.Notes)
	cp.StartedAt = cloneTime(ride.StartedAt)
	cp.CompletedAt = cloneTime(ride.CompletedAt)
	cp.CancelledAt = cloneTime(ride.CancelledAt)
	if ride.CancellationReason != nil {
		r := *ride.CancellationReason
		cp.CancellationReason = &r
	}
	return &cp
}

// ----- internal helpers -----

func validatePrice(price float64) error {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return ErrInvalidPrice
	}
	return nil
}

func cloneRoute(r Route) Route {
	r.Waypoints = slices.Clone(r.Waypoints)
	return r
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (ride *Ride) setStatus(status Status, now time.Time) {
	ride.Status = status
	ride.bump(now)
}

func (ride *Ride) bump(now time.Time) {
	ride.Version++
	ride.UpdatedAt = now.UTC()
}
