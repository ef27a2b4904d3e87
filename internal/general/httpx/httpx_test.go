package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/general/logger"
)

func TestErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.New(apperr.KindNotFound, "RIDE_NOT_FOUND", "ride not found"), http.StatusNotFound, "RIDE_NOT_FOUND"},
		{fmt.Errorf("approve: %w", apperr.New(apperr.KindInsufficientSeats, "INSUFFICIENT_SEATS", "no seats")), http.StatusConflict, "INSUFFICIENT_SEATS"},
		{apperr.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{apperr.Invalid("seats must be positive"), http.StatusBadRequest, "INVALID_INPUT"},
		{apperr.New(apperr.KindEditWindowExpired, "EDIT_WINDOW_EXPIRED", "too late"), http.StatusConflict, "EDIT_WINDOW_EXPIRED"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Error(context.Background(), logger.Discard(), rec, tc.err)
		if rec.Code != tc.status {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		var body ErrorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != tc.code {
			t.Errorf("%v: expected code %s, got %s", tc.err, tc.code, body.Code)
		}
		if tc.status == http.StatusInternalServerError && body.Error != "internal error" {
			t.Errorf("internal details leaked: %q", body.Error)
		}
	}
}

func TestDecode(t *testing.T) {
	type payload struct {
		Reason string `json:"reason"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"sick"}`))
	r.Header.Set("Content-Type", "application/json")
	var p payload
	if status, err := Decode(httptest.NewRecorder(), r, &p, false); err != nil || p.Reason != "sick" {
		t.Fatalf("decode: status=%d err=%v p=%+v", status, err, p)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	if status, err := Decode(httptest.NewRecorder(), r, &p, false); err == nil || status != http.StatusBadRequest {
		t.Fatalf("unknown fields must be rejected, got status=%d err=%v", status, err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`reason=x`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if status, _ := Decode(httptest.NewRecorder(), r, &p, false); status != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", status)
	}

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	if _, err := Decode(httptest.NewRecorder(), r, &p, true); err != nil {
		t.Fatalf("empty body must be accepted: %v", err)
	}
}

func TestPageFrom(t *testing.T) {
	p, err := PageFrom(httptest.NewRequest(http.MethodGet, "/?limit=10&offset=20", nil))
	if err != nil || p.Limit != 10 || p.Offset != 20 {
		t.Fatalf("unexpected page %+v err=%v", p, err)
	}
	if _, err := PageFrom(httptest.NewRequest(http.MethodGet, "/?limit=ten", nil)); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(logger.Discard(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "req-42")
	h.ServeHTTP(rec, r)
	if seen != "req-42" || rec.Header().Get("X-Request-ID") != "req-42" {
		t.Fatalf("expected req-42 to propagate, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen != rec.Header().Get("X-Request-ID") {
		t.Fatalf("expected a minted id, got %q", seen)
	}
}
