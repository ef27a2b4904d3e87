package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

type fakeAdminService struct {
	page ports.Page
}

func (f *fakeAdminService) Overview(context.Context, user.Actor) (ports.SystemOverview, error) {
	return ports.SystemOverview{
		Rides:       map[ride.Status]int{ride.StatusScheduled: 4},
		ActiveRides: 4,
	}, nil
}

func (f *fakeAdminService) ActiveRides(_ context.Context, _ user.Actor, page ports.Page) ([]*ride.Ride, error) {
	f.page = page
	return []*ride.Ride{{ID: "r-1", DriverID: "d-1", Status: ride.StatusScheduled, SeatsTotal: 3, SeatsAvailable: 1}}, nil
}

func get(t *testing.T, h http.Handler, mgr *jwt.Manager, role user.Role, path string) *httptest.ResponseRecorder {
	t.Helper()
	raw, _, err := mgr.IssueUserToken("u-1", role, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAdminRoutes(t *testing.T) {
	mgr := jwt.NewManager("test-secret", time.Hour)
	svc := &fakeAdminService{}
	mux := http.NewServeMux()
	NewAdminHTTPHandler(svc, logger.Discard(), mgr).RegisterRoutes(mux)

	if rec := get(t, mux, mgr, user.RolePassenger, "/admin/overview"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a passenger, got %d", rec.Code)
	}

	rec := get(t, mux, mgr, user.RoleAdmin, "/admin/overview")
	var overview ports.SystemOverview
	_ = json.Unmarshal(rec.Body.Bytes(), &overview)
	if rec.Code != http.StatusOK || overview.ActiveRides != 4 || overview.Rides[ride.StatusScheduled] != 4 {
		t.Fatalf("overview: %d %s", rec.Code, rec.Body)
	}

	rec = get(t, mux, mgr, user.RoleAdmin, "/admin/rides/active?page=3&page_size=20")
	var res activeRidesResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if rec.Code != http.StatusOK || len(res.Rides) != 1 || res.Rides[0].SeatsAvailable != 1 || res.Page != 3 {
		t.Fatalf("active rides: %d %s", rec.Code, rec.Body)
	}
	if svc.page.Limit != 20 || svc.page.Offset != 40 {
		t.Fatalf("page not converted: %+v", svc.page)
	}
}
