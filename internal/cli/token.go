package cli

import (
	"fmt"
	"time"

	"ride-share/internal/domain/user"
	"ride-share/internal/general/jwt"
)

// GenerateUserToken mints a JWT for a seeded user. Dev only.
//
//	token, _, err := cli.GenerateUserToken(secret, "driver-1", "DRIVER", true, 2*time.Hour)
func GenerateUserToken(secret, userID, roleStr string, verifiedDriver bool, ttl time.Duration) (string, jwt.Claims, error) {
	role, err := user.ParseRole(roleStr)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("invalid role %q: %w", roleStr, err)
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	mgr := jwt.NewManager(secret, ttl)
	token, claims, err := mgr.IssueUserToken(userID, role, verifiedDriver)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("issue token: %w", err)
	}

	return token, *claims, nil
}
