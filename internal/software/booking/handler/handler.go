package handler

import (
	"context"
	"net/http"
	"time"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/geo"
	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

const requestTimeout = 5 * time.Second

// BookingHTTPHandler adapts HTTP requests to the BookingService.
type BookingHTTPHandler struct {
	svc    ports.BookingService
	logger *logger.Logger
	auth   *jwt.Manager
}

func NewBookingHTTPHandler(svc ports.BookingService, logger *logger.Logger, auth *jwt.Manager) *BookingHTTPHandler {
	return &BookingHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts booking endpoints on the provided mux.
func (handler *BookingHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	authed := jwt.AuthMiddlewareFunc(handler.auth)

	mux.HandleFunc("POST /rides/{ride_id}/bookings", authed(handler.handleRequest))
	mux.HandleFunc("GET /rides/{ride_id}/bookings", authed(handler.handleListForRide))
	mux.HandleFunc("GET /bookings", authed(handler.handleListMine))
	mux.HandleFunc("GET /bookings/{booking_id}", authed(handler.handleGet))
	mux.HandleFunc("POST /bookings/{booking_id}/approve", authed(handler.handleApprove))
	mux.HandleFunc("POST /bookings/{booking_id}/reject", authed(handler.handleReject))
	mux.HandleFunc("POST /bookings/{booking_id}/cancel", authed(handler.handleCancel))
}

// --- DTOs (HTTP boundary) ---

type requestBookingRequest struct {
	SeatsBooked int        `json:"seats_booked"`
	Pickup      *geo.Point `json:"pickup,omitempty"`
	Dropoff     *geo.Point `json:"dropoff,omitempty"`
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type bookingView struct {
	ID                 string         `json:"booking_id"`
	RideID             string         `json:"ride_id"`
	PassengerID        string         `json:"passenger_id"`
	DriverID           string         `json:"driver_id"`
	Status             booking.Status `json:"status"`
	SeatsBooked        int            `json:"seats_booked"`
	TotalPrice         float64        `json:"total_price"`
	Pickup             geo.Point      `json:"pickup"`
	Dropoff            geo.Point      `json:"dropoff"`
	IsRatedByPassenger bool           `json:"is_rated_by_passenger"`
	IsRatedByDriver    bool           `json:"is_rated_by_driver"`
	ApprovedAt         *time.Time     `json:"approved_at,omitempty"`
	RejectedAt         *time.Time     `json:"rejected_at,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	DriverNotes        *string        `json:"driver_notes,omitempty"`
	CancellationReason *string        `json:"cancellation_reason,omitempty"`
	CancelledBy        *string        `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func newBookingView(b *booking.Booking) bookingView {
	return bookingView{
		ID:                 b.ID,
		RideID:             b.RideID,
		PassengerID:        b.PassengerID,
		DriverID:           b.DriverID,
		Status:             b.Status,
		SeatsBooked:        b.SeatsBooked,
		TotalPrice:         b.TotalPrice,
		Pickup:             b.Pickup,
		Dropoff:            b.Dropoff,
		IsRatedByPassenger: b.IsRatedByPassenger,
		IsRatedByDriver:    b.IsRatedByDriver,
		ApprovedAt:         b.ApprovedAt,
		RejectedAt:         b.RejectedAt,
		CancelledAt:        b.CancelledAt,
		CompletedAt:        b.CompletedAt,
		DriverNotes:        b.DriverNotes,
		CancellationReason: b.CancellationReason,
		CancelledBy:        b.CancelledBy,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func newBookingViews(list []*booking.Booking) []bookingView {
	out := make([]bookingView, 0, len(list))
	for _, b := range list {
		out = append(out, newBookingView(b))
	}
	return out
}

// ----- Handler: POST /rides/{ride_id}/bookings -----

func (handler *BookingHTTPHandler) handleRequest(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx, cancel := context.WithTimeout(handler.logger.WithRideID(r.Context(), rideID), requestTimeout)
	defer cancel()

	var req requestBookingRequest
	if status, err := httpx.Decode(w, r, &req, false); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}

	in := ports.RequestBookingInput{RideID: rideID, SeatsBooked: req.SeatsBooked}
	if req.Pickup != nil {
		in.Pickup = *req.Pickup
	}
	if req.Dropoff != nil {
		in.Dropoff = *req.Dropoff
	}

	b, err := handler.svc.Request(ctx, jwt.RequireActor(r), in)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(handler.logger.WithBookingID(ctx, b.ID), handler.logger, w, http.StatusCreated, newBookingView(b))
}

// ----- Handler: GET /rides/{ride_id}/bookings -----

func (handler *BookingHTTPHandler) handleListForRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.logger.WithRideID(r.Context(), r.PathValue("ride_id"))

	list, err := handler.svc.ListForRide(ctx, jwt.RequireActor(r), r.PathValue("ride_id"))
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newBookingViews(list))
}

// ----- Handler: GET /bookings -----

func (handler *BookingHTTPHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := httpx.PageFrom(r)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	list, err := handler.svc.ListMine(ctx, jwt.RequireActor(r), page)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newBookingViews(list))
}

// ----- Handler: GET /bookings/{booking_id} -----

func (handler *BookingHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := handler.logger.WithBookingID(r.Context(), r.PathValue("booking_id"))

	b, err := handler.svc.Get(ctx, jwt.RequireActor(r), r.PathValue("booking_id"))
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newBookingView(b))
}
