package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ride-share/internal/domain/ride"
	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
	"ride-share/internal/ports"
)

type activeRideRow struct {
	RideID               string      `json:"ride_id"`
	DriverID             string      `json:"driver_id"`
	Status               ride.Status `json:"status"`
	SourceAddress        string      `json:"source_address"`
	DestinationAddress   string      `json:"destination_address"`
	DepartureTime        time.Time   `json:"departure_time"`
	EstimatedArrivalTime time.Time   `json:"estimated_arrival_time"`
	SeatsTotal           int         `json:"seats_total"`
	SeatsAvailable       int         `json:"seats_available"`
	StartedAt            *time.Time  `json:"started_at,omitempty"`
}

type activeRidesResponse struct {
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Rides    []activeRideRow `json:"rides"`
}

// --- Handler: GET /admin/rides/active?page=X&page_size=Y ---

func (handler *AdminHTTPHandler) handleActiveRides(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	// page is 1-based; bad values fall back to defaults
	query := r.URL.Query()
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(query.Get("page_size"))
	if err != nil || size < 1 {
		size = 10
	}
	window := ports.Page{Limit: size, Offset: (page - 1) * size}.Normalize()

	rides, err := handler.svc.ActiveRides(ctx, jwt.RequireActor(r), window)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}

	res := activeRidesResponse{Page: page, PageSize: window.Limit, Rides: make([]activeRideRow, 0, len(rides))}
	for _, rd := range rides {
		res.Rides = append(res.Rides, activeRideRow{
			RideID:               rd.ID,
			DriverID:             rd.DriverID,
			Status:               rd.Status,
			SourceAddress:        rd.Route.Source.Address,
			DestinationAddress:   rd.Route.Destination.Address,
			DepartureTime:        rd.DepartureTime.UTC(),
			EstimatedArrivalTime: rd.EstimatedArrivalTime.UTC(),
			SeatsTotal:           rd.SeatsTotal,
			SeatsAvailable:       rd.SeatsAvailable,
			StartedAt:            rd.StartedAt,
		})
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, res)
}
