package handler

import (
	"context"
	"net/http"
	"time"

	"ride-share/internal/domain/rating"
	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

const requestTimeout = 5 * time.Second

// RatingHTTPHandler adapts HTTP requests to the RatingService.
type RatingHTTPHandler struct {
	svc    ports.RatingService
	logger *logger.Logger
	auth   *jwt.Manager
}

func NewRatingHTTPHandler(svc ports.RatingService, logger *logger.Logger, auth *jwt.Manager) *RatingHTTPHandler {
	return &RatingHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts rating endpoints on the provided mux.
func (handler *RatingHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	authed := jwt.AuthMiddlewareFunc(handler.auth)

	mux.HandleFunc("POST /ratings", authed(handler.handleSubmit))
	mux.HandleFunc("PATCH /ratings/{rating_id}", authed(handler.handleUpdate))
	mux.HandleFunc("DELETE /ratings/{rating_id}", authed(handler.handleDelete))
	mux.HandleFunc("GET /ratings/pending", authed(handler.handlePending))
	mux.HandleFunc("GET /users/{user_id}/ratings", authed(handler.handleUserRatings))
}

// --- DTOs (HTTP boundary) ---

type submitRatingRequest struct {
	BookingID  string            `json:"booking_id"`
	Score      int               `json:"score"`
	Categories rating.Categories `json:"categories"`
	Review     string            `json:"review"`
}

type updateRatingRequest struct {
	Score      *int               `json:"score,omitempty"`
	Categories *rating.Categories `json:"categories,omitempty"`
	Review     *string            `json:"review,omitempty"`
}

type ratingView struct {
	ID                string            `json:"rating_id"`
	BookingID         string            `json:"booking_id"`
	RaterID           string            `json:"rater_id"`
	RateeID           string            `json:"ratee_id"`
	IsPassengerRating bool              `json:"is_passenger_rating"`
	Score             int               `json:"score"`
	Categories        rating.Categories `json:"categories"`
	Review            string            `json:"review,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func newRatingView(r *rating.Rating) ratingView {
	return ratingView{
		ID:                r.ID,
		BookingID:         r.BookingID,
		RaterID:           r.RaterID,
		RateeID:           r.RateeID,
		IsPassengerRating: r.IsPassengerRating,
		Score:             r.Score,
		Categories:        r.Categories,
		Review:            r.Review,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type userRatingsResponse struct {
	ports.RatingSummary
	Ratings []ratingView `json:"ratings"`
}

// ----- Handler: POST /ratings -----

func (handler *RatingHTTPHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req submitRatingRequest
	if status, err := httpx.Decode(w, r, &req, false); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}
	ctx = handler.logger.WithBookingID(ctx, req.BookingID)

	created, err := handler.svc.Submit(ctx, jwt.RequireActor(r), ports.SubmitRatingInput{
		BookingID:  req.BookingID,
		Score:      req.Score,
		Categories: req.Categories,
		Review:     req.Review,
	})
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusCreated, newRatingView(created))
}

// ----- Handler: PATCH /ratings/{rating_id} -----

func (handler *RatingHTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req updateRatingRequest
	if status, err := httpx.Decode(w, r, &req, false); err != nil {
		httpx.Fail(ctx, handler.logger, w, status, err.Error(), err)
		return
	}

	updated, err := handler.svc.Update(ctx, jwt.RequireActor(r), r.PathValue("rating_id"), rating.Patch{
		Score:      req.Score,
		Categories: req.Categories,
		Review:     req.Review,
	})
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, newRatingView(updated))
}

// ----- Handler: DELETE /ratings/{rating_id} -----

func (handler *RatingHTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := handler.svc.Delete(ctx, jwt.RequireActor(r), r.PathValue("rating_id")); err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----- Handler: GET /ratings/pending -----

func (handler *RatingHTTPHandler) handlePending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out := make([]rating.Pending, 0)
	for p, err := range handler.svc.PendingFor(ctx, jwt.RequireActor(r)) {
		if err != nil {
			httpx.Error(ctx, handler.logger, w, err)
			return
		}
		out = append(out, p)
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, out)
}

// ----- Handler: GET /users/{user_id}/ratings -----

func (handler *RatingHTTPHandler) handleUserRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("user_id")

	page, err := httpx.PageFrom(r)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	summary, err := handler.svc.Summary(ctx, userID)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	list, err := handler.svc.ListForUser(ctx, userID, page)
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}

	views := make([]ratingView, 0, len(list))
	for _, rt := range list {
		views = append(views, newRatingView(rt))
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, userRatingsResponse{RatingSummary: summary, Ratings: views})
}
