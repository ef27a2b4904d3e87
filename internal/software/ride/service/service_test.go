package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/event"
	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/memstore"
	"ride-share/internal/ports"
	"ride-share/internal/software/ledger"
)

var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

var (
	driver    = user.NewActor("driver-1", user.RoleDriver, true)
	otherDrv  = user.NewActor("driver-2", user.RoleDriver, true)
	admin     = user.NewActor("admin-1", user.RoleAdmin, false)
	passenger = user.NewActor("passenger-1", user.RolePassenger, false)
)

type fixedEstimator struct{ perLeg time.Duration }

func (e fixedEstimator) TravelTime(context.Context, geo.Point, geo.Point) (time.Duration, error) {
	return e.perLeg, nil
}

type recordingEffects struct {
	mu  sync.Mutex
	got []*event.Transition
}

func (r *recordingEffects) Raise(_ context.Context, transitions []*event.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, transitions...)
}

func (r *recordingEffects) count(t event.Type, perBooking bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, tr := range r.got {
		if tr.Type == t && (tr.BookingID != "") == perBooking {
			n++
		}
	}
	return n
}

type harness struct {
	store   *memstore.Store
	repos   memstore.Repositories
	ledger  *ledger.Ledger
	effects *recordingEffects
	svc     ports.RideService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memstore.New()
	repos := store.Repositories()
	l := ledger.New(repos.Rides)
	fx := &recordingEffects{}
	svc := NewRideService(logger.Discard(), repos.UnitOfWork, repos.Rides, repos.Bookings, repos.Events,
		l, fixedEstimator{perLeg: 30 * time.Minute}, fx, WithClock(func() time.Time { return testNow }))
	return &harness{store: store, repos: repos, ledger: l, effects: fx, svc: svc}
}

func validInput(seats int) ports.CreateRideInput {
	return ports.CreateRideInput{
		Route: ride.Route{
			Source:      geo.Point{Address: "Almaty", Latitude: 43.238, Longitude: 76.945},
			Destination: geo.Point{Address: "Astana", Latitude: 51.169, Longitude: 71.449},
		},
		DepartureTime: testNow.Add(24 * time.Hour),
		SeatsTotal:    seats,
		PricePerSeat:  20,
	}
}

func (h *harness) createRide(t *testing.T, seats int) *ride.Ride {
	t.Helper()
	r, err := h.svc.Create(context.Background(), driver, validInput(seats))
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return r
}

// seedBooking stores a booking directly, debiting seats when it is approved.
func (h *harness) seedBooking(t *testing.T, r *ride.Ride, passengerID string, seats int, approved bool) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(booking.NewBookingParams{
		RideID: r.ID, PassengerID: passengerID, DriverID: r.DriverID, SeatsBooked: seats,
		PricePerSeat: r.PricePerSeat, RideSource: r.Route.Source, RideDest: r.Route.Destination,
	}, testNow)
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	err = h.repos.UnitOfWork.WithinTx(context.Background(), func(ctx context.Context) error {
		if approved {
			if err := b.Approve("", testNow); err != nil {
				return err
			}
			if _, err := h.ledger.Debit(ctx, r.ID, seats); err != nil {
				return err
			}
		}
		return h.repos.Bookings.Create(ctx, b)
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func (h *harness) bookings(t *testing.T, rideID string) []*booking.Booking {
	t.Helper()
	var out []*booking.Booking
	_ = h.repos.UnitOfWork.WithinTx(context.Background(), func(ctx context.Context) error {
		var err error
		out, err = h.repos.Bookings.ListByRide(ctx, rideID)
		return err
	})
	return out
}

func (h *harness) assertSeatInvariant(t *testing.T, rideID string) {
	t.Helper()
	r, err := h.svc.Get(context.Background(), rideID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	held := 0
	for _, b := range h.bookings(t, rideID) {
		if b.Status.HoldsSeats() {
			held += b.SeatsBooked
		}
	}
	if r.SeatsTotal-r.SeatsAvailable != held {
		t.Fatalf("seat invariant broken: total=%d available=%d held=%d", r.SeatsTotal, r.SeatsAvailable, held)
	}
}

func TestCreateRequiresVerifiedDriver(t *testing.T) {
	h := newHarness(t)
	for _, actor := range []user.Actor{passenger, user.NewActor("d", user.RoleDriver, false)} {
		_, err := h.svc.Create(context.Background(), actor, validInput(3))
		if !errors.Is(err, user.ErrNotVerifiedDriver) || apperr.KindOf(err) != apperr.KindForbidden {
			t.Fatalf("%s: expected ErrNotVerifiedDriver, got %v", actor.ID, err)
		}
	}
}

func TestCreateComputesArrival(t *testing.T) {
	h := newHarness(t)
	in := validInput(3)
	in.Route.Waypoints = []geo.Point{{Address: "Karaganda", Latitude: 49.8, Longitude: 73.1}}

	r, err := h.svc.Create(context.Background(), driver, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Status != ride.StatusScheduled || r.SeatsAvailable != 3 {
		t.Fatalf("unexpected ride %+v", r)
	}
	if want := in.DepartureTime.Add(time.Hour); !r.EstimatedArrivalTime.Equal(want) {
		t.Fatalf("expected arrival %v, got %v", want, r.EstimatedArrivalTime)
	}
	if got := h.store.Events(); len(got) != 1 || got[0].Type != event.RideCreated {
		t.Fatalf("expected one RIDE_CREATED event, got %v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	in := validInput(3)
	in.DepartureTime = testNow
	_, err := h.svc.Create(context.Background(), driver, in)
	if !errors.Is(err, ride.ErrDepartureNotInFuture) || apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected ErrDepartureNotInFuture, got %v", err)
	}
}

func TestUpdateResizeIsAtomic(t *testing.T) {
	h := newHarness(t)
	r := h.createRide(t, 4)
	h.seedBooking(t, r, "p-1", 3, true)
	h.seedBooking(t, r, "p-2", 1, false)

	price := 99.0
	small := 2
	_, err := h.svc.Update(context.Background(), driver, r.ID, ride.Patch{SeatsTotal: &small, PricePerSeat: &price})
	if !errors.Is(err, ride.ErrBelowBookedSeats) {
		t.Fatalf("expected ErrBelowBookedSeats, got %v", err)
	}
	if got, _ := h.svc.Get(context.Background(), r.ID); got.PricePerSeat != 20 {
		t.Fatalf("failed update must not persist the price, got %v", got.PricePerSeat)
	}

	exact := 3
	updated, err := h.svc.Update(context.Background(), driver, r.ID, ride.Patch{SeatsTotal: &exact})
	if err != nil {
		t.Fatalf("resize to committed: %v", err)
	}
	if updated.SeatsAvailable != 0 || updated.SeatsTotal != 3 {
		t.Fatalf("expected 0/3, got %d/%d", updated.SeatsAvailable, updated.SeatsTotal)
	}
	if got := h.effects.count(event.RideUpdated, true); got != 2 {
		t.Fatalf("expected RideUpdated for both active bookings, got %d", got)
	}
	h.assertSeatInvariant(t, r.ID)
}

func TestUpdateDepartureShiftsArrival(t *testing.T) {
	h := newHarness(t)
	r := h.createRide(t, 2)
	dep := r.DepartureTime.Add(3 * time.Hour)

	updated, err := h.svc.Update(context.Background(), driver, r.ID, ride.Patch{DepartureTime: &dep})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if want := dep.Add(30 * time.Minute); !updated.EstimatedArrivalTime.Equal(want) {
		t.Fatalf("expected arrival %v, got %v", want, updated.EstimatedArrivalTime)
	}
}

func TestUpdateOwnershipAndState(t *testing.T) {
	h := newHarness(t)
	r := h.createRide(t, 2)
	price := 5.0

	if _, err := h.svc.Update(context.Background(), otherDrv, r.ID, ride.Patch{PricePerSeat: &price}); !errors.Is(err, ride.ErrNotRideDriver) {
		t.Fatalf("expected ErrNotRideDriver, got %v", err)
	}
	if _, err := h.svc.Update(context.Background(), driver, r.ID, ride.Patch{}); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("empty patch must be invalid input, got %v", err)
	}
	if _, err := h.svc.Start(context.Background(), driver, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.svc.Update(context.Background(), driver, r.ID, ride.Patch{PricePerSeat: &price}); !errors.Is(err, ride.ErrRideNotEditable) {
		t.Fatalf("expected ErrRideNotEditable, got %v", err)
	}
}

func TestCancelCascadesToActiveBookings(t *testing.T) {
	h := newHarness(t)
	r := h.createRide(t, 5)
	h.seedBooking(t, r, "p-1", 2, true)
	h.seedBooking(t, r, "p-2", 1, true)
	h.seedBooking(t, r, "p-3", 1, false)

	res, err := h.svc.Cancel(context.Background(), driver, r.ID, "car broke down")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.CancelledBookings != 3 || res.SeatsReleased != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Ride.Status != ride.StatusCancelled || res.Ride.SeatsAvailable != res.Ride.SeatsTotal {
		t.Fatalf("ride must be cancelled with every seat available, got %+v", res.Ride)
	}
	for _, b := range h.bookings(t, r.ID) {
		if b.Status != booking.StatusCancelled {
			t.Fatalf("booking %s is %s", b.ID, b.Status)
		}
		if b.CancelledBy == nil || *b.CancelledBy != driver.ID || b.CancellationReason == nil {
			t.Fatalf("cascade must record driver and note, got %+v", b)
		}
	}
	if got := h.effects.count(event.BookingCancelled, true); got != 3 {
		t.Fatalf("expected 3 BookingCancelled transitions, got %d", got)
	}
	h.assertSeatInvariant(t, r.ID)

	if _, err := h.svc.Cancel(context.Background(), driver, r.ID, ""); apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("second cancel must be InvalidState, got %v", err)
	}
}

func TestCancelPermissions(t *testing.T) {
	h := newHarness(t)
	r := h.createRide(t, 1)
	if _, err := h.svc.Cancel(context.Background(), passenger, r.ID, ""); !errors.Is(err, ride.ErrNotRideDriver) {
		t.Fatalf("passenger cannot cancel a ride, got %v", err)
	}
	if _, err := h.svc.Cancel(context.Background(), admin, r.ID, "policy"); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestStartAndCompletePayOut(t *testing.T) {
	h := newHarness(t)
	r := h.createRide(t, 4)
	h.seedBooking(t, r, "p-1", 2, true)
	h.seedBooking(t, r, "p-2", 1, true)
	pending := h.seedBooking(t, r, "p-3", 1, false)

	if _, err := h.svc.Complete(context.Background(), driver, r.ID); !errors.Is(err, ride.ErrInvalidStatusTransition) {
		t.Fatalf("cannot complete a scheduled ride, got %v", err)
	}
	if _, err := h.svc.Start(context.Background(), driver, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := h.effects.count(event.RideStarted, true); got != 2 {
		t.Fatalf("expected RideStarted per approved booking, got %d", got)
	}

	res, err := h.svc.Complete(context.Background(), driver, r.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.CompletedBookings != 2 || res.DriverEarnings != 60 {
		t.Fatalf("unexpected result %+v", res)
	}
	for _, b := range h.bookings(t, r.ID) {
		want := booking.StatusCompleted
		if b.ID == pending.ID {
			want = booking.StatusPending
		}
		if b.Status != want {
			t.Fatalf("booking %s: expected %s, got %s", b.ID, want, b.Status)
		}
	}
	h.assertSeatInvariant(t, r.ID)
}

func TestAddNoteOnTerminalRide(t *testing.T) {
	h := newHarness(t)
	r := h.createRide(t, 1)
	if _, err := h.svc.Cancel(context.Background(), driver, r.ID, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := h.svc.AddNote(context.Background(), admin, r.ID, "refund issued"); err != nil {
		t.Fatalf("add note: %v", err)
	}
	got, _ := h.svc.Get(context.Background(), r.ID)
	if len(got.Notes) != 1 || got.Notes[0].Text != "refund issued" {
		t.Fatalf("note not stored: %+v", got.Notes)
	}
	if _, err := h.svc.AddNote(context.Background(), admin, r.ID, "  "); !errors.Is(err, ride.ErrEmptyNote) {
		t.Fatalf("expected ErrEmptyNote, got %v", err)
	}
}
