package handler

import (
	"context"
	"net/http"

	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
)

type cancelRideRequest struct {
	Reason string `json:"reason"`
}

type cancelRideResponse struct {
	Ride              rideView `json:"ride"`
	CancelledBookings int      `json:"cancelled_bookings"`
	SeatsReleased     int      `json:"seats_released"`
}

// ----- Handler: POST /rides/{ride_id}/cancel -----

func (handler *RideHTTPHandler) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx, cancel := context.WithTimeout(handler.logger.WithRideID(r.Context(), rideID), requestTimeout)
	defer cancel()

	var req cancelRideRequest
	if status, err := httpx.Decode(w, r, &req, true); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}

	res, err := handler.svc.Cancel(ctx, jwt.RequireActor(r), rideID, req.Reason)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, cancelRideResponse{
		Ride:              newRideView(res.Ride),
		CancelledBookings: res.CancelledBookings,
		SeatsReleased:     res.SeatsReleased,
	})
}
