package booking

import (
	"errors"
	"testing"
	"time"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/geo"
)

var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

var (
	src = geo.Point{Address: "Almaty", Latitude: 43.238, Longitude: 76.945}
	dst = geo.Point{Address: "Astana", Latitude: 51.169, Longitude: 71.449}
)

func newPending(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(NewBookingParams{
		RideID:       "ride-1",
		PassengerID:  "passenger-1",
		DriverID:     "driver-1",
		SeatsBooked:  2,
		PricePerSeat: 12.5,
		RideSource:   src,
		RideDest:     dst,
	}, testNow)
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	return b
}

func TestNewBookingFreezesPriceAndDefaults(t *testing.T) {
	b := newPending(t)
	if b.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", b.Status)
	}
	if b.TotalPrice != 25 {
		t.Fatalf("expected total price 25, got %v", b.TotalPrice)
	}
	if b.Pickup != src || b.Dropoff != dst {
		t.Fatalf("pickup/dropoff must default to the route ends, got %+v %+v", b.Pickup, b.Dropoff)
	}
}

func TestNewBookingRejectsSelfBooking(t *testing.T) {
	_, err := NewBooking(NewBookingParams{PassengerID: "d", DriverID: "d", SeatsBooked: 1}, testNow)
	if !errors.Is(err, ErrSelfBooking) {
		t.Fatalf("expected ErrSelfBooking, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("self booking must be Forbidden, got %s", apperr.KindOf(err))
	}
}

func TestNewBookingValidatesInput(t *testing.T) {
	if _, err := NewBooking(NewBookingParams{PassengerID: "p", DriverID: "d"}, testNow); !errors.Is(err, ErrInvalidSeatCount) {
		t.Fatalf("expected ErrInvalidSeatCount, got %v", err)
	}
	_, err := NewBooking(NewBookingParams{
		PassengerID: "p", DriverID: "d", SeatsBooked: 1,
		Pickup: geo.Point{Address: "x", Latitude: 95},
	}, testNow)
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected invalid input for bad pickup, got %v", err)
	}
}

func TestTransitions(t *testing.T) {
	b := newPending(t)
	if err := b.Complete(testNow); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("PENDING cannot complete, got %v", err)
	}
	if err := b.Approve("see you", testNow); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := b.Reject("", testNow); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("APPROVED cannot be rejected, got %v", err)
	}
	held, err := b.Cancel("passenger-1", "plans changed", testNow)
	if err != nil || !held {
		t.Fatalf("cancel approved: held=%v err=%v", held, err)
	}
	if _, err := b.Cancel("passenger-1", "", testNow); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("second cancel must be InvalidState, got %v", err)
	}
	if b.CancelledBy == nil || *b.CancelledBy != "passenger-1" {
		t.Fatalf("cancelledBy not recorded: %+v", b.CancelledBy)
	}
}

func TestCancelPendingHoldsNoSeats(t *testing.T) {
	b := newPending(t)
	held, err := b.Cancel("driver-1", "", testNow)
	if err != nil || held {
		t.Fatalf("pending cancel must not hold seats: held=%v err=%v", held, err)
	}
}

func TestCounterparty(t *testing.T) {
	b := newPending(t)
	if got := b.Counterparty("passenger-1"); got != "driver-1" {
		t.Fatalf("expected driver-1, got %q", got)
	}
	if got := b.Counterparty("driver-1"); got != "passenger-1" {
		t.Fatalf("expected passenger-1, got %q", got)
	}
	if got := b.Counterparty("admin"); got != "" {
		t.Fatalf("expected empty counterparty for admin, got %q", got)
	}
}

func TestRatedFlags(t *testing.T) {
	b := newPending(t)
	b.SetRated(true, true, testNow)
	if !b.RatedBy(true) || b.RatedBy(false) {
		t.Fatalf("unexpected flags %v/%v", b.IsRatedByPassenger, b.IsRatedByDriver)
	}
	cp := b.Clone()
	cp.SetRated(true, false, testNow)
	if !b.IsRatedByPassenger {
		t.Fatal("clone must not alias the original")
	}
}
