package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/roombook/internal/persistence"
	"github.com/example/roombook/internal/rbac"
	"github.com/example/roombook/internal/token"
)

// CredentialStore exposes the user lookups required by the auth service.
type CredentialStore interface {
	GetUser(ctx context.Context, id int64) (persistence.User, error)
	GetUserByUsername(ctx context.Context, username string) (persistence.User, error)
}

// TokenIssuer abstracts the signed token pair operations.
type TokenIssuer interface {
	IssueAccessToken(userID int64, username string, isAdmin bool, roles, permissions []string) (string, error)
	IssueRefreshToken(userID int64) (string, error)
	VerifyAccessToken(raw string) (token.AccessClaims, error)
	VerifyRefreshToken(raw string) (token.RefreshClaims, error)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates login, token refresh, and access-token validation.
// Sessions are stateless: the token pair is the whole session.
type AuthService struct {
	credentials    CredentialStore
	tokens         TokenIssuer
	verifyPassword PasswordVerifier
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, tokens TokenIssuer, verify PasswordVerifier, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	return &AuthService{
		credentials:    credentials,
		tokens:         tokens,
		verifyPassword: verify,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login validates credentials and issues a token pair. adminLogin selects the
// admin endpoint: the stored admin flag must match the requested mode.
// A nonexistent user, a wrong password, and a mode mismatch all surface the
// same ErrInvalidCredentials so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, params LoginParams, adminLogin bool) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	username := strings.TrimSpace(params.Username)

	logger := s.loggerWith(ctx, "Login", "username", username, "admin_login", adminLogin)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	stored, err := s.credentials.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if stored.IsAdmin != adminLogin {
		err = ErrInvalidCredentials
		return
	}
	if err = s.verifyPassword(stored.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}
	if stored.IsFrozen {
		err = ErrAccountFrozen
		return
	}

	user, tokens, err := s.issuePair(stored)
	if err != nil {
		return
	}

	result = LoginResult{User: user, Tokens: tokens}
	return
}

// Refresh verifies a refresh token and mints a fresh pair. The user's current
// role and permission state is re-read so grants made after the original
// login take effect. The incoming refresh token is never extended; a new one
// is always issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, adminMode bool) (pair TokenPair, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Refresh", "admin_mode", adminMode)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "token refresh failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "token pair rotated")
	}()

	claims, verifyErr := s.tokens.VerifyRefreshToken(refreshToken)
	if verifyErr != nil {
		err = ErrSessionExpired
		return
	}

	stored, err := s.credentials.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrSessionExpired
		}
		return
	}

	if stored.IsAdmin != adminMode {
		err = ErrSessionExpired
		return
	}

	_, pair, err = s.issuePair(stored)
	return
}

// ValidateAccess decodes an access token into a Principal. Verification
// failures are terminal; there is no anonymous fallback.
func (s *AuthService) ValidateAccess(ctx context.Context, raw string) (Principal, error) {
	if s == nil || s.tokens == nil {
		return Principal{}, fmt.Errorf("auth service not configured")
	}

	claims, err := s.tokens.VerifyAccessToken(raw)
	if err != nil {
		s.loggerWith(ctx, "ValidateAccess").ErrorContext(ctx, "access token rejected", "error", err, "error_kind", ErrorKind(ErrTokenInvalid))
		return Principal{}, ErrTokenInvalid
	}

	return Principal{
		UserID:      claims.UserID,
		Username:    claims.Username,
		IsAdmin:     claims.IsAdmin,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}, nil
}

func (s *AuthService) issuePair(stored persistence.User) (User, TokenPair, error) {
	roleNames, permissions := rbac.Aggregate(rbacRoles(stored.Roles))

	access, err := s.tokens.IssueAccessToken(stored.ID, stored.Username, stored.IsAdmin, roleNames, permissions)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(stored.ID)
	if err != nil {
		return User{}, TokenPair{}, err
	}

	user := userFromPersistence(stored, roleNames, permissions)
	return user, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func rbacRoles(roles []persistence.Role) []rbac.Role {
	if len(roles) == 0 {
		return nil
	}
	converted := make([]rbac.Role, 0, len(roles))
	for _, role := range roles {
		perms := make([]rbac.Permission, 0, len(role.Permissions))
		for _, perm := range role.Permissions {
			perms = append(perms, rbac.Permission{ID: perm.ID, Code: perm.Code, Description: perm.Description})
		}
		converted = append(converted, rbac.Role{ID: role.ID, Name: role.Name, Permissions: perms})
	}
	return converted
}
