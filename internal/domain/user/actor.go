package user

import (
	"strings"

	"ride-share/internal/domain/apperr"
)

// Actor is the authenticated caller as supplied by the identity layer. It is trusted as-is.
type Actor struct {
	ID             string
	Role           Role
	VerifiedDriver bool
}

var (
	ErrActorRequired     = apperr.New(apperr.KindForbidden, "ACTOR_REQUIRED", "authenticated actor is required")
	ErrNotVerifiedDriver = apperr.New(apperr.KindForbidden, "NOT_VERIFIED_DRIVER", "only verified drivers can publish rides")
)

// NewActor builds an Actor from identity claims.
func NewActor(id string, role Role, verifiedDriver bool) Actor {
	return Actor{ID: strings.TrimSpace(id), Role: role, VerifiedDriver: verifiedDriver}
}

// Validate checks that the actor carries an id and a known role.
func (actor Actor) Validate() error {
	if actor.ID == "" || !actor.Role.Valid() {
		return ErrActorRequired
	}
	return nil
}

// CanPublishRides reports whether the actor may create rides.
func (actor Actor) CanPublishRides() error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.Role.IsDriver() || !actor.VerifiedDriver {
		return ErrNotVerifiedDriver
	}
	return nil
}

// Is reports whether the actor is the user with the given id.
func (actor Actor) Is(userID string) bool {
	return actor.ID != "" && actor.ID == userID
}

func (actor Actor) IsAdmin() bool { return actor.Role.IsAdmin() }
