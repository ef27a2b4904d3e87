package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// fakeRideService records the last call and returns canned results.
type fakeRideService struct {
	actor  user.Actor
	in     ports.CreateRideInput
	patch  ride.Patch
	reason string
	err    error
	ride   *ride.Ride
}

func (f *fakeRideService) Create(_ context.Context, a user.Actor, in ports.CreateRideInput) (*ride.Ride, error) {
	f.actor, f.in = a, in
	return f.ride, f.err
}

func (f *fakeRideService) Get(context.Context, string) (*ride.Ride, error) { return f.ride, f.err }

func (f *fakeRideService) Update(_ context.Context, a user.Actor, _ string, p ride.Patch) (*ride.Ride, error) {
	f.actor, f.patch = a, p
	return f.ride, f.err
}

func (f *fakeRideService) Cancel(_ context.Context, a user.Actor, _ string, reason string) (ports.CancelRideResult, error) {
	f.actor, f.reason = a, reason
	return ports.CancelRideResult{Ride: f.ride, CancelledBookings: 2, SeatsReleased: 3}, f.err
}

func (f *fakeRideService) Start(_ context.Context, a user.Actor, _ string) (*ride.Ride, error) {
	f.actor = a
	return f.ride, f.err
}

func (f *fakeRideService) Complete(_ context.Context, a user.Actor, _ string) (ports.CompleteRideResult, error) {
	f.actor = a
	return ports.CompleteRideResult{Ride: f.ride, CompletedBookings: 1, DriverEarnings: 20}, f.err
}

func (f *fakeRideService) AddNote(_ context.Context, a user.Actor, _ string, text string) (ride.Note, error) {
	f.actor = a
	return ride.Note{AuthorID: a.ID, Text: text}, f.err
}

func setup(t *testing.T) (*fakeRideService, http.Handler, string) {
	t.Helper()
	mgr := jwt.NewManager("test-secret", time.Hour)
	raw, _, err := mgr.IssueUserToken("driver-1", user.RoleDriver, true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc := &fakeRideService{ride: &ride.Ride{ID: "ride-1", DriverID: "driver-1", Status: ride.StatusScheduled, SeatsTotal: 4, SeatsAvailable: 4}}
	mux := http.NewServeMux()
	NewRideHTTPHandler(svc, logger.Discard(), mgr).RegisterRoutes(mux)
	return svc, mux, "Bearer " + raw
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestCreateRide(t *testing.T) {
	svc, h, token := setup(t)

	body := `{
		"route": {"source": {"address":"A","latitude":1,"longitude":1}, "destination": {"address":"B","latitude":2,"longitude":2}},
		"departure_time": "2026-03-02T08:00:00Z",
		"seats_total": 4,
		"price_per_seat": 10,
		"preferences": {"pets_allowed": true}
	}`
	rec := do(h, http.MethodPost, "/rides", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	if svc.actor.ID != "driver-1" || !svc.actor.VerifiedDriver {
		t.Fatalf("actor not taken from token: %+v", svc.actor)
	}
	if svc.in.SeatsTotal != 4 || !svc.in.Preferences.PetsAllowed || svc.in.Route.Destination.Address != "B" {
		t.Fatalf("unexpected input %+v", svc.in)
	}

	var view map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	if view["ride_id"] != "ride-1" || view["status"] != "SCHEDULED" {
		t.Fatalf("unexpected body %v", view)
	}

	if rec := do(h, http.MethodPost, "/rides", "", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/rides", token, `{"seats":1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown fields, got %d", rec.Code)
	}
}

func TestUpdateAndErrors(t *testing.T) {
	svc, h, token := setup(t)

	rec := do(h, http.MethodPatch, "/rides/ride-1", token, `{"seats_total": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if svc.patch.SeatsTotal == nil || *svc.patch.SeatsTotal != 2 || svc.patch.PricePerSeat != nil {
		t.Fatalf("unexpected patch %+v", svc.patch)
	}

	svc.err = ride.ErrBelowBookedSeats
	rec = do(h, http.MethodPatch, "/rides/ride-1", token, `{"seats_total": 1}`)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "BELOW_BOOKED_SEATS") {
		t.Fatalf("expected 409 BELOW_BOOKED_SEATS, got %d: %s", rec.Code, rec.Body)
	}

	svc.err = ride.ErrRideNotFound
	if rec := do(h, http.MethodGet, "/rides/missing", token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLifecycleRoutes(t *testing.T) {
	svc, h, token := setup(t)

	rec := do(h, http.MethodPost, "/rides/ride-1/cancel", token, `{"reason":"car broke"}`)
	if rec.Code != http.StatusOK || svc.reason != "car broke" {
		t.Fatalf("cancel: %d %q", rec.Code, svc.reason)
	}
	var cancelled cancelRideResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &cancelled)
	if cancelled.CancelledBookings != 2 || cancelled.SeatsReleased != 3 {
		t.Fatalf("unexpected cancel body %+v", cancelled)
	}

	// the reason is optional
	if rec := do(h, http.MethodPost, "/rides/ride-1/cancel", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("cancel without body: %d %s", rec.Code, rec.Body)
	}

	if rec := do(h, http.MethodPost, "/rides/ride-1/start", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("start: %d", rec.Code)
	}

	rec = do(h, http.MethodPost, "/rides/ride-1/complete", token, "")
	var completed completeRideResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &completed)
	if rec.Code != http.StatusOK || completed.DriverEarnings != 20 {
		t.Fatalf("complete: %d %+v", rec.Code, completed)
	}

	rec = do(h, http.MethodPost, "/rides/ride-1/notes", token, `{"text":"spare tyre in trunk"}`)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "spare tyre") {
		t.Fatalf("note: %d %s", rec.Code, rec.Body)
	}
}
