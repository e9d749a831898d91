// Package token issues and verifies the signed access/refresh token pair
// carrying session identity. Sessions are stateless: everything a handler
// needs is encoded in the token itself.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is returned when a token fails signature or expiry checks.
// Verification failures are terminal for that token; callers must obtain a
// fresh pair.
var ErrTokenInvalid = errors.New("token: invalid or expired")

const (
	// DefaultAccessTTL bounds the short-lived access token.
	DefaultAccessTTL = 30 * time.Minute
	// DefaultRefreshTTL bounds the long-lived refresh token.
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// AccessClaims is the full identity payload embedded in access tokens.
type AccessClaims struct {
	UserID      int64    `json:"userId"`
	Username    string   `json:"username"`
	IsAdmin     bool     `json:"isAdmin"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only the user identity; roles and permissions are
// re-read from persistence on refresh so later grants take effect.
type RefreshClaims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with an HMAC secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager constructs a Manager. Zero TTLs fall back to the defaults and a
// nil clock falls back to time.Now.
func NewManager(secret []byte, accessTTL, refreshTTL time.Duration, now func() time.Time) (*Manager, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: now}, nil
}

// IssueAccessToken signs an access token for the supplied identity.
func (m *Manager) IssueAccessToken(userID int64, username string, isAdmin bool, roles, permissions []string) (string, error) {
	issued := m.now()
	claims := AccessClaims{
		UserID:      userID,
		Username:    username,
		IsAdmin:     isAdmin,
		Roles:       roles,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(m.accessTTL)),
		},
	}
	return m.sign(claims)
}

// IssueRefreshToken signs a refresh token carrying only the user id. Each
// token carries a unique jti, so a refresh always rotates to new bytes even
// when issued within the same second as its predecessor.
func (m *Manager) IssueRefreshToken(userID int64) (string, error) {
	issued := m.now()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(m.refreshTTL)),
		},
	}
	return m.sign(claims)
}

// VerifyAccessToken parses and validates an access token.
func (m *Manager) VerifyAccessToken(raw string) (AccessClaims, error) {
	var claims AccessClaims
	if err := m.parse(raw, &claims); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// VerifyRefreshToken parses and validates a refresh token.
func (m *Manager) VerifyRefreshToken(raw string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := m.parse(raw, &claims); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

func (m *Manager) parse(raw string, claims jwt.Claims) error {
	if raw == "" {
		return ErrTokenInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
