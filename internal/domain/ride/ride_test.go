package ride

import (
	"errors"
	"testing"
	"time"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/geo"
)

var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestRide(t *testing.T, seats int) *Ride {
	t.Helper()
	r, err := NewRide(NewRideParams{
		DriverID: "driver-1",
		Route: Route{
			Source:      geo.Point{Address: "Almaty", Latitude: 43.238, Longitude: 76.945},
			Destination: geo.Point{Address: "Astana", Latitude: 51.169, Longitude: 71.449},
		},
		DepartureTime: testNow.Add(24 * time.Hour),
		SeatsTotal:    seats,
		PricePerSeat:  10,
	}, testNow)
	if err != nil {
		t.Fatalf("NewRide: %v", err)
	}
	return r
}

func TestNewRideDefaults(t *testing.T) {
	r := newTestRide(t, 4)
	if r.Status != StatusScheduled {
		t.Fatalf("expected SCHEDULED, got %s", r.Status)
	}
	if r.SeatsAvailable != 4 || r.SeatsTotal != 4 {
		t.Fatalf("expected 4/4 seats, got %d/%d", r.SeatsAvailable, r.SeatsTotal)
	}
	r.SetTravelTime(90 * time.Minute)
	if want := r.DepartureTime.Add(90 * time.Minute); !r.EstimatedArrivalTime.Equal(want) {
		t.Fatalf("expected arrival %v, got %v", want, r.EstimatedArrivalTime)
	}
}

func TestNewRideValidation(t *testing.T) {
	base := NewRideParams{
		DriverID: "d",
		Route: Route{
			Source:      geo.Point{Address: "A", Latitude: 1, Longitude: 1},
			Destination: geo.Point{Address: "B", Latitude: 2, Longitude: 2},
		},
		DepartureTime: testNow.Add(time.Hour),
		SeatsTotal:    2,
		PricePerSeat:  0,
	}

	cases := []struct {
		name   string
		mutate func(p *NewRideParams)
		want   error
	}{
		{"departure now", func(p *NewRideParams) { p.DepartureTime = testNow }, ErrDepartureNotInFuture},
		{"departure past", func(p *NewRideParams) { p.DepartureTime = testNow.Add(-time.Minute) }, ErrDepartureNotInFuture},
		{"zero seats", func(p *NewRideParams) { p.SeatsTotal = 0 }, ErrInvalidSeatCount},
		{"negative price", func(p *NewRideParams) { p.PricePerSeat = -1 }, ErrInvalidPrice},
		{"no driver", func(p *NewRideParams) { p.DriverID = " " }, ErrDriverRequired},
		{"bad source", func(p *NewRideParams) { p.Route.Source.Latitude = 100 }, apperr.ErrInvalidInput},
		{"weekly without days", func(p *NewRideParams) { p.Recurrence = &Recurrence{Frequency: FrequencyWeekly} }, ErrInvalidRecurrence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			_, err := NewRide(p, testNow)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if apperr.KindOf(err) != apperr.KindInvalidInput {
				t.Fatalf("expected INVALID_INPUT kind, got %s", apperr.KindOf(err))
			}
		})
	}

	if _, err := NewRide(base, testNow); err != nil {
		t.Fatalf("zero price must be allowed: %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusScheduled, StatusInProgress, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}

	for _, st := range []Status{StatusScheduled, StatusInProgress} {
		if !st.Active() || st.Terminal() {
			t.Errorf("%s should be active", st)
		}
	}
	for _, st := range []Status{StatusCompleted, StatusCancelled} {
		if st.Active() || !st.Terminal() {
			t.Errorf("%s should be terminal", st)
		}
	}
	if Status("PARKED").Terminal() || Status("PARKED").Valid() {
		t.Error("unknown statuses are neither valid nor terminal")
	}
	if st, err := ParseStatus(" in_progress "); err != nil || st != StatusInProgress {
		t.Errorf("ParseStatus: %v %v", st, err)
	}
}

func TestLifecycle(t *testing.T) {
	r := newTestRide(t, 2)
	if err := r.Complete(testNow); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("complete from SCHEDULED must fail, got %v", err)
	}
	if err := r.Start(testNow); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Cancel("late", testNow); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("cancel from IN_PROGRESS must fail, got %v", err)
	}
	if err := r.Complete(testNow); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if r.Status != StatusCompleted || r.CompletedAt == nil || r.StartedAt == nil {
		t.Fatalf("unexpected ride state %+v", r)
	}
	if _, err := r.AddNote("admin", "refund requested", testNow); err != nil {
		t.Fatalf("notes are allowed on terminal rides: %v", err)
	}
	if _, err := r.Apply(Patch{Preferences: &Preferences{PetsAllowed: true}}, testNow); !errors.Is(err, ErrRideNotEditable) {
		t.Fatalf("expected ErrRideNotEditable, got %v", err)
	}
}

func TestSeatArithmetic(t *testing.T) {
	r := newTestRide(t, 4)
	if err := r.DebitSeats(3, testNow); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := r.DebitSeats(2, testNow); !errors.Is(err, ErrInsufficientSeats) {
		t.Fatalf("expected ErrInsufficientSeats, got %v", err)
	}
	if err := r.CreditSeats(10, testNow); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if r.SeatsAvailable != r.SeatsTotal {
		t.Fatalf("credit must cap at total, got %d/%d", r.SeatsAvailable, r.SeatsTotal)
	}
}

func TestMutationsStampInjectedClock(t *testing.T) {
	r := newTestRide(t, 4)
	steps := []struct {
		name string
		run  func(at time.Time) error
	}{
		{"debit", func(at time.Time) error { return r.DebitSeats(1, at) }},
		{"credit", func(at time.Time) error { return r.CreditSeats(1, at) }},
		{"resize", func(at time.Time) error { return r.Resize(5, at) }},
		{"note", func(at time.Time) error {
			_, err := r.AddNote("driver-1", "gate B", at)
			return err
		}},
		{"start", func(at time.Time) error { return r.Start(at) }},
		{"complete", func(at time.Time) error { return r.Complete(at) }},
	}
	for i, step := range steps {
		at := testNow.Add(time.Duration(i+1) * time.Minute)
		version := r.Version
		if err := step.run(at); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if !r.UpdatedAt.Equal(at) {
			t.Fatalf("%s: expected updated_at %s, got %s", step.name, at, r.UpdatedAt)
		}
		if r.Version != version+1 {
			t.Fatalf("%s: expected version %d, got %d", step.name, version+1, r.Version)
		}
	}
}

func TestResizeBoundary(t *testing.T) {
	r := newTestRide(t, 4)
	if err := r.DebitSeats(3, testNow); err != nil {
		t.Fatalf("debit: %v", err)
	}

	err := r.Resize(2, testNow)
	if !errors.Is(err, ErrBelowBookedSeats) {
		t.Fatalf("expected ErrBelowBookedSeats, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindBelowBookedSeats {
		t.Fatalf("unexpected kind %s", apperr.KindOf(err))
	}

	if err := r.Resize(3, testNow); err != nil {
		t.Fatalf("resize to committed seats: %v", err)
	}
	if r.SeatsAvailable != 0 || r.SeatsTotal != 3 {
		t.Fatalf("expected 0/3 seats, got %d/%d", r.SeatsAvailable, r.SeatsTotal)
	}

	if err := r.Resize(6, testNow); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if r.SeatsAvailable != 3 || r.CommittedSeats() != 3 {
		t.Fatalf("expected 3 available and 3 committed, got %d/%d", r.SeatsAvailable, r.CommittedSeats())
	}
}

func TestApplyPatchRecomputesSchedule(t *testing.T) {
	r := newTestRide(t, 2)
	price := 15.0
	changed, err := r.Apply(Patch{PricePerSeat: &price}, testNow)
	if err != nil || changed {
		t.Fatalf("price change must not flag schedule: changed=%v err=%v", changed, err)
	}
	dep := testNow.Add(48 * time.Hour)
	changed, err = r.Apply(Patch{DepartureTime: &dep}, testNow)
	if err != nil || !changed {
		t.Fatalf("departure change must flag schedule: changed=%v err=%v", changed, err)
	}
	past := testNow.Add(-time.Hour)
	if _, err := r.Apply(Patch{DepartureTime: &past}, testNow); !errors.Is(err, ErrDepartureNotInFuture) {
		t.Fatalf("expected ErrDepartureNotInFuture, got %v", err)
	}
}
