package rating

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/booking"
)

var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func completedBooking() *booking.Booking {
	return &booking.Booking{
		ID:          "b-1",
		RideID:      "r-1",
		PassengerID: "p-1",
		DriverID:    "d-1",
		Status:      booking.StatusCompleted,
		SeatsBooked: 1,
	}
}

func TestDirection(t *testing.T) {
	b := completedBooking()

	ratee, byPassenger, err := Direction(b, "p-1")
	if err != nil || ratee != "d-1" || !byPassenger {
		t.Fatalf("passenger rates driver: ratee=%q byPassenger=%v err=%v", ratee, byPassenger, err)
	}
	ratee, byPassenger, err = Direction(b, "d-1")
	if err != nil || ratee != "p-1" || byPassenger {
		t.Fatalf("driver rates passenger: ratee=%q byPassenger=%v err=%v", ratee, byPassenger, err)
	}

	if _, _, err := Direction(b, "stranger"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	b.IsRatedByPassenger = true
	if _, _, err := Direction(b, "p-1"); !errors.Is(err, ErrDuplicateRating) {
		t.Fatalf("expected ErrDuplicateRating, got %v", err)
	}

	b.Status = booking.StatusApproved
	_, _, err = Direction(b, "d-1")
	if !errors.Is(err, ErrBookingNotCompleted) || apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("expected ErrBookingNotCompleted, got %v", err)
	}
	if _, _, err := Direction(b, "stranger"); !errors.Is(err, ErrBookingNotCompleted) {
		t.Fatalf("an unfinished booking is reported before participation, got %v", err)
	}
}

func TestNewRatingValidation(t *testing.T) {
	base := NewRatingParams{BookingID: "b", RaterID: "p", RateeID: "d", Score: 5}

	cases := []struct {
		name   string
		mutate func(p *NewRatingParams)
		want   error
	}{
		{"score zero", func(p *NewRatingParams) { p.Score = 0 }, ErrInvalidScore},
		{"score six", func(p *NewRatingParams) { p.Score = 6 }, ErrInvalidScore},
		{"category out of range", func(p *NewRatingParams) { p.Categories.Driving = 7 }, ErrInvalidCategory},
		{"review too long", func(p *NewRatingParams) { p.Review = strings.Repeat("x", maxReviewLength+1) }, ErrReviewTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			if _, err := NewRating(p, testNow); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	r, err := NewRating(NewRatingParams{Score: 4, Categories: Categories{Punctuality: 5}, Review: "  great  "}, testNow)
	if err != nil {
		t.Fatalf("valid rating: %v", err)
	}
	if r.Review != "great" {
		t.Fatalf("review must be trimmed, got %q", r.Review)
	}
}

func TestApplyScoreDelta(t *testing.T) {
	r, err := NewRating(NewRatingParams{Score: 2}, testNow)
	if err != nil {
		t.Fatalf("NewRating: %v", err)
	}
	score := 5
	delta, err := r.Apply(Patch{Score: &score}, testNow.Add(time.Hour))
	if err != nil || delta != 3 || r.Score != 5 {
		t.Fatalf("expected delta 3 and score 5, got delta=%d score=%d err=%v", delta, r.Score, err)
	}

	bad := 9
	if _, err := r.Apply(Patch{Score: &bad}, testNow); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}
	if r.Score != 5 {
		t.Fatalf("failed patch must not change the rating, got %d", r.Score)
	}
}

func TestEditWindow(t *testing.T) {
	r, err := NewRating(NewRatingParams{Score: 3}, testNow)
	if err != nil {
		t.Fatalf("NewRating: %v", err)
	}
	if err := r.Editable(testNow.Add(EditWindow)); err != nil {
		t.Fatalf("exactly seven days is still editable: %v", err)
	}
	err = r.Editable(testNow.Add(EditWindow + time.Second))
	if !errors.Is(err, ErrEditWindowExpired) || apperr.KindOf(err) != apperr.KindEditWindowExpired {
		t.Fatalf("expected ErrEditWindowExpired, got %v", err)
	}
}
