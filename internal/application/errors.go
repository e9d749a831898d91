package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique resource (username, room name) is taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned for a bad username/password pair, a
	// nonexistent user, or an admin-flag mismatch. The cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountFrozen is returned when a frozen account attempts to log in.
	ErrAccountFrozen = errors.New("application: account frozen")
	// ErrTokenInvalid is returned when an access token fails verification.
	ErrTokenInvalid = errors.New("application: token invalid")
	// ErrSessionExpired is returned when a refresh token fails verification;
	// the caller must log in again.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrRoomUnavailable is returned when a requested interval overlaps an
	// occupying booking on the same room.
	ErrRoomUnavailable = errors.New("application: room unavailable")
	// ErrAlreadyUrged is returned when a booking was urged within the
	// throttle window.
	ErrAlreadyUrged = errors.New("application: already urged")
	// ErrCaptchaExpired is returned when no captcha is on record for the address.
	ErrCaptchaExpired = errors.New("application: captcha expired")
	// ErrCaptchaMismatch is returned when the supplied captcha does not match.
	ErrCaptchaMismatch = errors.New("application: captcha mismatch")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
