package handler

import (
	"context"
	"net/http"
	"time"

	"ride-share/internal/domain/ride"
	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
	"ride-share/internal/ports"
)

// --- Request DTOs (HTTP boundary) ---

type createRideRequest struct {
	Route         ride.Route       `json:"route"`
	DepartureTime time.Time        `json:"departure_time"`
	SeatsTotal    int              `json:"seats_total"`
	PricePerSeat  float64          `json:"price_per_seat"`
	Preferences   ride.Preferences `json:"preferences"`
	Recurrence    *ride.Recurrence `json:"recurrence,omitempty"`
}

type updateRideRequest struct {
	Route           *ride.Route       `json:"route,omitempty"`
	DepartureTime   *time.Time        `json:"departure_time,omitempty"`
	SeatsTotal      *int              `json:"seats_total,omitempty"`
	PricePerSeat    *float64          `json:"price_per_seat,omitempty"`
	Preferences     *ride.Preferences `json:"preferences,omitempty"`
	Recurrence      *ride.Recurrence  `json:"recurrence,omitempty"`
	ClearRecurrence bool              `json:"clear_recurrence,omitempty"`
}

// ----- Handler: POST /rides -----

func (handler *RideHTTPHandler) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req createRideRequest
	if status, err := httpx.Decode(w, r, &req, false); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}

	created, err := handler.svc.Create(ctx, jwt.RequireActor(r), ports.CreateRideInput{
		Route:         req.Route,
		DepartureTime: req.DepartureTime,
		SeatsTotal:    req.SeatsTotal,
		PricePerSeat:  req.PricePerSeat,
		Preferences:   req.Preferences,
		Recurrence:    req.Recurrence,
	})
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(handler.logger.WithRideID(ctx, created.ID), handler.logger, w, http.StatusCreated, newRideView(created))
}

// ----- Handler: GET /rides/{ride_id} -----

func (handler *RideHTTPHandler) handleGetRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.logger.WithRideID(r.Context(), r.PathValue("ride_id"))

	found, err := handler.svc.Get(ctx, r.PathValue("ride_id"))
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newRideView(found))
}

// ----- Handler: PATCH /rides/{ride_id} -----

func (handler *RideHTTPHandler) handleUpdateRide(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(handler.logger.WithRideID(r.Context(), r.PathValue("ride_id")), requestTimeout)
	defer cancel()

	var req updateRideRequest
	if status, err := httpx.Decode(w, r, &req, false); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}

	updated, err := handler.svc.Update(ctx, jwt.RequireActor(r), r.PathValue("ride_id"), ride.Patch{
		Route:           req.Route,
		DepartureTime:   req.DepartureTime,
		SeatsTotal:      req.SeatsTotal,
		PricePerSeat:    req.PricePerSeat,
		Preferences:     req.Preferences,
		Recurrence:      req.Recurrence,
		ClearRecurrence: req.ClearRecurrence,
	})
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newRideView(updated))
}
