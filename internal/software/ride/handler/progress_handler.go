package handler

import (
	"context"
	"net/http"

	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
)

type completeRideResponse struct {
	Ride              rideView `json:"ride"`
	CompletedBookings int      `json:"completed_bookings"`
	DriverEarnings    float64  `json:"driver_earnings"`
}

type addNoteRequest struct {
	Text string `json:"text"`
}

// ----- Handler: POST /rides/{ride_id}/start -----

func (handler *RideHTTPHandler) handleStartRide(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx, cancel := context.WithTimeout(handler.logger.WithRideID(r.Context(), rideID), requestTimeout)
	defer cancel()

	started, err := handler.svc.Start(ctx, jwt.RequireActor(r), rideID)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newRideView(started))
}

// ----- Handler: POST /rides/{ride_id}/complete -----

func (handler *RideHTTPHandler) handleCompleteRide(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx, cancel := context.WithTimeout(handler.logger.WithRideID(r.Context(), rideID), requestTimeout)
	defer cancel()

	res, err := handler.svc.Complete(ctx, jwt.RequireActor(r), rideID)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, completeRideResponse{
		Ride:              newRideView(res.Ride),
		CompletedBookings: res.CompletedBookings,
		DriverEarnings:    res.DriverEarnings,
	})
}

// ----- Handler: POST /rides/{ride_id}/notes -----

func (handler *RideHTTPHandler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx, cancel := context.WithTimeout(handler.logger.WithRideID(r.Context(), rideID), requestTimeout)
	defer cancel()

	var req addNoteRequest
	if status, err := httpx.Decode(w, r, &req, false); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}

	note, err := handler.svc.AddNote(ctx, jwt.RequireActor(r), rideID, req.Text)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusCreated, note)
}
