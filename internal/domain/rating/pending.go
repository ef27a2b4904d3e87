package rating

import "time"

// Pending is a completed booking the user has not rated yet.
type Pending struct {
	BookingID         string    `json:"booking_id"`
	RideID            string    `json:"ride_id"`
	RateeID           string    `json:"ratee_id"`
	IsPassengerRating bool      `json:"is_passenger_rating"`
	CompletedAt       time.Time `json:"completed_at"`
}
