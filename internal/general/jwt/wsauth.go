package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ride-share/internal/domain/user"
)

var ErrBadAuthMsg = errors.New("invalid auth message")

// AuthFrame is the first frame a notification socket sends when the upgrade request
// carried no token: {"type":"auth","token":"Bearer <jwt>"}.
type AuthFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ValidateWSAuth verifies an auth frame and, when roles are given, the caller's role.
func ValidateWSAuth(frame []byte, mgr *Manager, allowedRoles ...user.Role) (*Claims, error) {
	var msg AuthFrame
	if err := json.Unmarshal(frame, &msg); err != nil || !strings.EqualFold(strings.TrimSpace(msg.Type), "auth") {
		return nil, ErrBadAuthMsg
	}

	raw, err := bearer(msg.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadAuthMsg, err)
	}
	claims, err := mgr.Verify(raw)
	if err != nil {
		return nil, err
	}
	if len(allowedRoles) > 0 {
		if err := RoleAllowed(claims, allowedRoles...); err != nil {
			return nil, err
		}
	}
	return claims, nil
}
