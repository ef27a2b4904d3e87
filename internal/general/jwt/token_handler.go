package jwt

import (
	"net/http"
	"strings"
	"time"

	"ride-share/internal/domain/user"
	"ride-share/internal/general/httpx"
	"ride-share/internal/general/logger"
)

type TokenRequest struct {
	UserID         string    `json:"user_id"`
	Role           user.Role `json:"role"`
	VerifiedDriver bool      `json:"verified_driver"`
}

type TokenResponse struct {
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expires_at"`
	UserID         string    `json:"user_id"`
	Role           user.Role `json:"role"`
	VerifiedDriver bool      `json:"verified_driver"`
}

// TokenHandler serves POST /tokens. It mints tokens for any subject and is meant
// for local development only.
func TokenHandler(mgr *Manager, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req TokenRequest
		if status, err := httpx.Decode(w, r, &req, false); err != nil {
			httpx.Fail(ctx, log, w, status, err.Error(), err)
			return
		}
		if strings.TrimSpace(req.UserID) == "" {
			httpx.Fail(ctx, log, w, http.StatusBadRequest, "user_id is required", nil)
			return
		}
		if !req.Role.Valid() {
			httpx.Fail(ctx, log, w, http.StatusBadRequest, "role must be one of PASSENGER, DRIVER, ADMIN", nil)
			return
		}

		raw, claims, err := mgr.IssueUserToken(req.UserID, req.Role, req.VerifiedDriver)
		if err != nil {
			httpx.Fail(ctx, log, w, http.StatusInternalServerError, "failed to generate token", err)
			return
		}

		log.Info(ctx, "token_generated", "JWT token generated", map[string]any{"user_id": req.UserID, "role": req.Role.String()})
		httpx.JSON(ctx, log, w, http.StatusCreated, TokenResponse{
			Token:          raw,
			ExpiresAt:      claims.ExpiresAt.Time,
			UserID:         claims.Subject,
			Role:           claims.Role,
			VerifiedDriver: claims.VerifiedDriver,
		})
	}
}
