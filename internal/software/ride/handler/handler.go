package handler

import (
	"net/http"
	"time"

	"ride-share/internal/domain/ride"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

const requestTimeout = 5 * time.Second

// RideHTTPHandler adapts HTTP requests to the RideService.
type RideHTTPHandler struct {
	svc    ports.RideService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewRideHTTPHandler wires an HTTP handler around the RideService.
func NewRideHTTPHandler(svc ports.RideService, logger *logger.Logger, auth *jwt.Manager) *RideHTTPHandler {
	return &RideHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts ride endpoints on the provided mux.
func (handler *RideHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	authed := jwt.AuthMiddlewareFunc(handler.auth)

	mux.HandleFunc("POST /rides", authed(handler.handleCreateRide))
	mux.HandleFunc("GET /rides/{ride_id}", authed(handler.handleGetRide))
	mux.HandleFunc("PATCH /rides/{ride_id}", authed(handler.handleUpdateRide))
	mux.HandleFunc("POST /rides/{ride_id}/cancel", authed(handler.handleCancelRide))
	mux.HandleFunc("POST /rides/{ride_id}/start", authed(handler.handleStartRide))
	mux.HandleFunc("POST /rides/{ride_id}/complete", authed(handler.handleCompleteRide))
	mux.HandleFunc("POST /rides/{ride_id}/notes", authed(handler.handleAddNote))
}

// ----- response views -----

type rideView struct {
	ID                   string           `json:"ride_id"`
	DriverID             string           `json:"driver_id"`
	Status               ride.Status      `json:"status"`
	Route                ride.Route       `json:"route"`
	DepartureTime        time.Time        `json:"departure_time"`
	EstimatedArrivalTime time.Time        `json:"estimated_arrival_time"`
	SeatsTotal           int              `json:"seats_total"`
	SeatsAvailable       int              `json:"seats_available"`
	PricePerSeat         float64          `json:"price_per_seat"`
	Preferences          ride.Preferences `json:"preferences"`
	Recurrence           *ride.Recurrence `json:"recurrence,omitempty"`
	StartedAt            *time.Time       `json:"started_at,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	CancelledAt          *time.Time       `json:"cancelled_at,omitempty"`
	CancellationReason   *string          `json:"cancellation_reason,omitempty"`
	Notes                []ride.Note      `json:"notes"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

func newRideView(r *ride.Ride) rideView {
	notes := r.Notes
	if notes == nil {
		notes = []ride.Note{}
	}
	return rideView{
		ID:                   r.ID,
		DriverID:             r.DriverID,
		Status:               r.Status,
		Route:                r.Route,
		DepartureTime:        r.DepartureTime,
		EstimatedArrivalTime: r.EstimatedArrivalTime,
		SeatsTotal:           r.SeatsTotal,
		SeatsAvailable:       r.SeatsAvailable,
		PricePerSeat:         r.PricePerSeat,
		Preferences:          r.Preferences,
		Recurrence:           r.Recurrence,
		StartedAt:            r.StartedAt,
		CompletedAt:          r.CompletedAt,
		CancelledAt:          r.CancelledAt,
		CancellationReason:   r.CancellationReason,
		Notes:                notes,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}
