package handler

import (
	"context"
	"net/http"

	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
)

// --- Handler: GET /admin/overview ---

func (handler *AdminHTTPHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	overview, err := handler.svc.Overview(ctx, jwt.RequireActor(r))
	if err != nil {
		httpx.Error(ctx, handler.logger, w, err)
		return
	}
	httpx.JSON(ctx, handler.logger, w, http.StatusOK, overview)
}
