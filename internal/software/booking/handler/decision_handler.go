package handler

import (
	"context"
	"net/http"

	"ride-share/internal/domain/booking"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
)

type decideFunc func(ctx context.Context, actor user.Actor, bookingID, notes string) (*booking.Booking, error)

// ----- Handlers: POST /bookings/{booking_id}/approve|reject -----

func (handler *BookingHTTPHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	handler.decide(w, r, handler.svc.Approve)
}

func (handler *BookingHTTPHandler) handleReject(w http.ResponseWriter, r *http.Request) {
	handler.decide(w, r, handler.svc.Reject)
}

func (handler *BookingHTTPHandler) decide(w http.ResponseWriter, r *http.Request, fn decideFunc) {
	bookingID := r.PathValue("booking_id")
	ctx, cancel := context.WithTimeout(handler.logger.WithBookingID(r.Context(), bookingID), requestTimeout)
	defer cancel()

	var req decisionRequest
	if status, err := httpx.Decode(w, r, &req, true); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}

	b, err := fn(ctx, jwt.RequireActor(r), bookingID, req.Notes)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newBookingView(b))
}

// ----- Handler: POST /bookings/{booking_id}/cancel -----

func (handler *BookingHTTPHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("booking_id")
	ctx, cancel := context.WithTimeout(handler.logger.WithBookingID(r.Context(), bookingID), requestTimeout)
	defer cancel()

	var req cancelBookingRequest
	if status, err := httpx.Decode(w, r, &req, true); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}

	b, err := handler.svc.Cancel(ctx, jwt.RequireActor(r), bookingID, req.Reason)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newBookingView(b))
}
