package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"ride-share/internal/domain/user"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoAuthHeader       = errors.New("authorization header missing")
	ErrBadAuthScheme      = errors.New("authorization must start with Bearer")
	ErrEmptyToken         = errors.New("bearer token missing")
	ErrInvalidSigningAlgo = errors.New("unexpected signing method")
	ErrRoleForbidden      = errors.New("role not allowed")
)

// Manager issues and verifies HS256 access tokens.
type Manager struct {
	secret    []byte
	accessTTL time.Duration
	leeway    time.Duration
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLeeway tolerates clock skew between services when checking exp and iat.
func WithLeeway(d time.Duration) Option {
	return func(m *Manager) { m.leeway = d }
}

// NewManager panics on an empty secret; configuration always supplies one.
func NewManager(secret string, accessTTL time.Duration, opts ...Option) *Manager {
	s := strings.TrimSpace(secret)
	if s == "" {
		panic("jwt: empty secret key")
	}
	m := &Manager{secret: []byte(s), accessTTL: accessTTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IssueUserToken signs a token for userID. The verified flag only sticks for drivers.
func (m *Manager) IssueUserToken(userID string, role user.Role, verifiedDriver bool) (string, *Claims, error) {
	if !role.Valid() {
		return "", nil, fmt.Errorf("invalid role: %s", role)
	}
	if strings.TrimSpace(userID) == "" {
		return "", nil, errors.New("empty subject")
	}

	claims := newClaims(userID, role, verifiedDriver, m.now(), m.accessTTL)
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, issuer, expiry and the payload of raw.
func (m *Manager) Verify(raw string) (*Claims, error) {
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithLeeway(m.leeway),
		jwtlib.WithTimeFunc(m.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
		if t.Method != jwtlib.SigningMethodHS256 {
			return nil, ErrInvalidSigningAlgo
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// FromAuthorization reads "Authorization: Bearer <token>". Browsers cannot set headers on
// a WebSocket upgrade, so an Authorization query parameter is accepted too, with or
// without the scheme.
func FromAuthorization(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		return bearer(h)
	}
	if q := strings.TrimSpace(r.URL.Query().Get("Authorization")); q != "" {
		if tok, err := bearer(q); err == nil {
			return tok, nil
		}
		return q, nil
	}
	return "", ErrNoAuthHeader
}

func bearer(value string) (string, error) {
	scheme, token, _ := strings.Cut(strings.TrimSpace(value), " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", ErrBadAuthScheme
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// RoleAllowed reports ErrRoleForbidden unless the claims carry one of allowed.
func RoleAllowed(cl *Claims, allowed ...user.Role) error {
	if slices.Contains(allowed, cl.Role) {
		return nil
	}
	return ErrRoleForbidden
}

type claimsKey struct{}

// InjectClaims adds JWT claims to the context.
func InjectClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// FromContext extracts JWT claims from the context.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

// ActorFromContext returns the authenticated actor injected by the middleware.
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	c, ok := FromContext(ctx)
	if !ok {
		return user.Actor{}, false
	}
	return c.Actor(), true
}
