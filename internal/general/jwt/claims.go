package jwt

import (
	"errors"
	"strings"
	"time"

	"ride-share/internal/domain/user"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is stamped on every token and required when verifying.
const Issuer = "ride-share"

// Claims is the token payload: who the caller is and whether a driver may publish rides.
type Claims struct {
	Role           user.Role `json:"role"`
	VerifiedDriver bool      `json:"verified_driver,omitempty"`
	jwtlib.RegisteredClaims
}

var (
	_ jwtlib.Claims          = (*Claims)(nil)
	_ jwtlib.ClaimsValidator = (*Claims)(nil)
)

// NewUserClaims builds claims issued now and valid for ttl.
func NewUserClaims(userID string, role user.Role, verifiedDriver bool, ttl time.Duration) *Claims {
	return newClaims(userID, role, verifiedDriver, time.Now(), ttl)
}

func newClaims(userID string, role user.Role, verifiedDriver bool, issuedAt time.Time, ttl time.Duration) *Claims {
	issuedAt = issuedAt.UTC()
	return &Claims{
		Role:           role,
		VerifiedDriver: verifiedDriver && role.IsDriver(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
			ExpiresAt: jwtlib.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
}

// Validate runs after the registered claims check passes.
func (c *Claims) Validate() error {
	if strings.TrimSpace(c.Subject) == "" {
		return errors.New("token without subject")
	}
	if !c.Role.Valid() {
		return errors.New("token with unknown role")
	}
	return nil
}

// Actor is the identity the services act on behalf of.
func (c *Claims) Actor() user.Actor {
	return user.NewActor(c.Subject, c.Role, c.VerifiedDriver)
}
