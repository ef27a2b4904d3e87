package ports

import (
	"context"
	"iter"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/rating"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
)

// ----- DTOs for Ride Service -----

// CreateRideInput is the input required to publish a ride.
type CreateRideInput struct {
	Route         ride.Route
	DepartureTime time.Time
	SeatsTotal    int
	PricePerSeat  float64
	Preferences   ride.Preferences
	Recurrence    *ride.Recurrence
}

// CancelRideResult is returned by RideService.Cancel.
type CancelRideResult struct {
	Ride              *ride.Ride `json:"ride"`
	CancelledBookings int        `json:"cancelled_bookings"`
	SeatsReleased     int        `json:"seats_released"`
}

// CompleteRideResult is returned by RideService.Complete.
type CompleteRideResult struct {
	Ride              *ride.Ride `json:"ride"`
	CompletedBookings int        `json:"completed_bookings"`
	DriverEarnings    float64    `json:"driver_earnings"`
}

// ----- Ride Service Interface -----

// RideService exposes the ride lifecycle.
type RideService interface {
	Create(ctx context.Context, actor user.Actor, in CreateRideInput) (*ride.Ride, error)
	Get(ctx context.Context, rideID string) (*ride.Ride, error)
	Update(ctx context.Context, actor user.Actor, rideID string, patch ride.Patch) (*ride.Ride, error)
	Cancel(ctx context.Context, actor user.Actor, rideID, reason string) (CancelRideResult, error)
	Start(ctx context.Context, actor user.Actor, rideID string) (*ride.Ride, error)
	Complete(ctx context.Context, actor user.Actor, rideID string) (CompleteRideResult, error)
	AddNote(ctx context.Context, actor user.Actor, rideID, text string) (ride.Note, error)
}

// ---------------------------------------------------------------------------------------------------------------

// ----- DTOs for Booking Service -----

// RequestBookingInput is the input for BookingService.Request. Zero pickup/dropoff
// default to the ride's source/destination.
type RequestBookingInput struct {
	RideID      string
	SeatsBooked int
	Pickup      geo.Point
	Dropoff     geo.Point
}

// ----- Booking Service Interface -----

// BookingService exposes the booking lifecycle.
type BookingService interface {
	Request(ctx context.Context, actor user.Actor, in RequestBookingInput) (*booking.Booking, error)
	Approve(ctx context.Context, actor user.Actor, bookingID, notes string) (*booking.Booking, error)
	Reject(ctx context.Context, actor user.Actor, bookingID, notes string) (*booking.Booking, error)
	Cancel(ctx context.Context, actor user.Actor, bookingID, reason string) (*booking.Booking, error)
	Get(ctx context.Context, actor user.Actor, bookingID string) (*booking.Booking, error)
	ListForRide(ctx context.Context, actor user.Actor, rideID string) ([]*booking.Booking, error)
	ListMine(ctx context.Context, actor user.Actor, page Page) ([]*booking.Booking, error)
}

// ---------------------------------------------------------------------------------------------------------------

// ----- DTOs for Rating Service -----

// SubmitRatingInput is the input for RatingService.Submit.
type SubmitRatingInput struct {
	BookingID  string
	Score      int
	Categories rating.Categories
	Review     string
}

// RatingSummary is the public aggregate of a ratee.
type RatingSummary struct {
	UserID       string  `json:"user_id"`
	AvgRating    float64 `json:"avg_rating"`
	TotalRatings int     `json:"total_ratings"`
}

// ----- Rating Service Interface -----

// RatingService exposes rating submission and aggregation.
type RatingService interface {
	Submit(ctx context.Context, actor user.Actor, in SubmitRatingInput) (*rating.Rating, error)
	Update(ctx context.Context, actor user.Actor, ratingID string, patch rating.Patch) (*rating.Rating, error)
	Delete(ctx context.Context, actor user.Actor, ratingID string) error
	PendingFor(ctx context.Context, actor user.Actor) iter.Seq2[rating.Pending, error]
	Summary(ctx context.Context, userID string) (RatingSummary, error)
	ListForUser(ctx context.Context, userID string, page Page) ([]*rating.Rating, error)
}

// ---------------------------------------------------------------------------------------------------------------

// ----- DTOs for Admin Service -----

// SystemOverview is a point-in-time snapshot of ride and booking counts.
type SystemOverview struct {
	Timestamp       time.Time              `json:"timestamp"`
	Rides           map[ride.Status]int    `json:"rides"`
	Bookings        map[booking.Status]int `json:"bookings"`
	ActiveRides     int                    `json:"active_rides"`
	PendingBookings int                    `json:"pending_bookings"`
}

// ----- Admin Service Interface -----

// AdminService exposes read-only monitoring for admins.
type AdminService interface {
	Overview(ctx context.Context, actor user.Actor) (SystemOverview, error)
	ActiveRides(ctx context.Context, actor user.Actor, page Page) ([]*ride.Ride, error)
}
