package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/memstore"
	"ride-share/internal/software/booking/service"
	"ride-share/internal/software/ledger"
	ridehandler "ride-share/internal/software/ride/handler"
	rideservice "ride-share/internal/software/ride/service"
)

type fixedEstimator struct{}

func (fixedEstimator) TravelTime(context.Context, geo.Point, geo.Point) (time.Duration, error) {
	return time.Hour, nil
}

type noEffects struct{}

func (noEffects) Raise(context.Context, []*event.Transition) {}

type api struct {
	t      *testing.T
	mux    *http.ServeMux
	tokens map[string]string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	mgr := jwt.NewManager("test-secret", time.Hour)
	repos := memstore.New().Repositories()
	l := ledger.New(repos.Rides)
	log := logger.Discard()

	rides := rideservice.NewRideService(log, repos.UnitOfWork, repos.Rides, repos.Bookings, repos.Events, l, fixedEstimator{}, noEffects{})
	bookings := service.NewBookingService(log, repos.UnitOfWork, repos.Rides, repos.Bookings, repos.Events, l, noEffects{})

	mux := http.NewServeMux()
	ridehandler.NewRideHTTPHandler(rides, log, mgr).RegisterRoutes(mux)
	NewBookingHTTPHandler(bookings, log, mgr).RegisterRoutes(mux)

	a := &api{t: t, mux: mux, tokens: map[string]string{}}
	for id, role := range map[string]user.Role{"driver-1": user.RoleDriver, "alice": user.RolePassenger, "bob": user.RolePassenger} {
		raw, _, err := mgr.IssueUserToken(id, role, role == user.RoleDriver)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		a.tokens[id] = "Bearer " + raw
	}
	return a
}

func (a *api) call(who, method, path, body string, out any) int {
	a.t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set("Authorization", a.tokens[who])
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, r)
	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec.Code
}

func (a *api) createRide(seats int) string {
	a.t.Helper()
	body := fmt.Sprintf(`{
		"route": {"source": {"address":"Almaty","latitude":43.2,"longitude":76.9}, "destination": {"address":"Astana","latitude":51.1,"longitude":71.4}},
		"departure_time": %q,
		"seats_total": %d,
		"price_per_seat": 10
	}`, time.Now().Add(48*time.Hour).UTC().Format(time.RFC3339), seats)
	var out struct {
		ID string `json:"ride_id"`
	}
	if code := a.call("driver-1", http.MethodPost, "/rides", body, &out); code != http.StatusCreated {
		a.t.Fatalf("create ride: %d", code)
	}
	return out.ID
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	rideID := a.createRide(4)

	var b bookingView
	if code := a.call("alice", http.MethodPost, "/rides/"+rideID+"/bookings", `{"seats_booked":2}`, &b); code != http.StatusCreated {
		t.Fatalf("request: %d", code)
	}
	if b.Status != "PENDING" || b.TotalPrice != 20 || b.Pickup.Address != "Almaty" {
		t.Fatalf("unexpected booking %+v", b)
	}

	if code := a.call("alice", http.MethodPost, "/rides/"+rideID+"/bookings", `{"seats_booked":1}`, nil); code != http.StatusConflict {
		t.Fatalf("duplicate active booking must be 409, got %d", code)
	}
	if code := a.call("driver-1", http.MethodPost, "/rides/"+rideID+"/bookings", `{"seats_booked":1}`, nil); code != http.StatusForbidden {
		t.Fatalf("self booking must be 403, got %d", code)
	}
	if code := a.call("bob", http.MethodPost, "/bookings/"+b.ID+"/approve", "", nil); code != http.StatusForbidden {
		t.Fatalf("strangers cannot approve, got %d", code)
	}

	if code := a.call("driver-1", http.MethodPost, "/bookings/"+b.ID+"/approve", `{"notes":"see you"}`, &b); code != http.StatusOK {
		t.Fatalf("approve: %d", code)
	}
	if b.Status != "APPROVED" || b.DriverNotes == nil || *b.DriverNotes != "see you" {
		t.Fatalf("unexpected approved booking %+v", b)
	}

	var r struct {
		SeatsAvailable int `json:"seats_available"`
	}
	a.call("alice", http.MethodGet, "/rides/"+rideID, "", &r)
	if r.SeatsAvailable != 2 {
		t.Fatalf("expected 2 seats left, got %d", r.SeatsAvailable)
	}

	if code := a.call("bob", http.MethodPost, "/rides/"+rideID+"/bookings", `{"seats_booked":3}`, nil); code != http.StatusConflict {
		t.Fatalf("overbooking must be 409, got %d", code)
	}

	var mine []bookingView
	if code := a.call("alice", http.MethodGet, "/bookings?limit=10", "", &mine); code != http.StatusOK || len(mine) != 1 {
		t.Fatalf("list mine: %d %d", code, len(mine))
	}
	var forRide []bookingView
	if code := a.call("driver-1", http.MethodGet, "/rides/"+rideID+"/bookings", "", &forRide); code != http.StatusOK || len(forRide) != 1 {
		t.Fatalf("list for ride: %d %d", code, len(forRide))
	}

	if code := a.call("alice", http.MethodPost, "/bookings/"+b.ID+"/cancel", `{"reason":"plans changed"}`, &b); code != http.StatusOK || b.Status != "CANCELLED" {
		t.Fatalf("cancel: %d %+v", code, b)
	}
	a.call("alice", http.MethodGet, "/rides/"+rideID, "", &r)
	if r.SeatsAvailable != 4 {
		t.Fatalf("cancelling an approved booking must return its seats, got %d", r.SeatsAvailable)
	}

	if code := a.call("bob", http.MethodGet, "/bookings/"+b.ID, "", nil); code != http.StatusForbidden && code != http.StatusNotFound {
		t.Fatalf("bookings are private to their parties, got %d", code)
	}
}
