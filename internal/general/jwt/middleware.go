package jwt

import (
	"net/http"

	"ride-share/internal/domain/user"
)

// AuthMiddlewareFunc validates tokens and injects claims into the request context. With no
// allowed roles every valid token passes.
func AuthMiddlewareFunc(mgr *Manager, allowedRoles ...user.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, err := FromAuthorization(r)
			if err != nil {
				unauthorized(w, err)
				return
			}
			claims, err := mgr.Verify(raw)
			if err != nil {
				unauthorized(w, err)
				return
			}

			if len(allowedRoles) > 0 {
				if err := RoleAllowed(claims, allowedRoles...); err != nil {
					http.Error(w, err.Error(), http.StatusForbidden)
					return
				}
			}

			next(w, r.WithContext(InjectClaims(r.Context(), claims)))
		}
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="`+Issuer+`"`)
	http.Error(w, err.Error(), http.StatusUnauthorized)
}

// RequireActor returns the actor of an authenticated request. Handlers behind
// AuthMiddlewareFunc always have one.
func RequireActor(r *http.Request) user.Actor {
	a, _ := ActorFromContext(r.Context())
	return a
}
