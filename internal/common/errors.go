package common

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// Registration conflicts.
	ErrEmailTaken    = errors.New("email is already registered")
	ErrUsernameTaken = errors.New("username is already in use")

	// Credential verification.
	ErrUserNotFound    = errors.New("user not found")
	ErrBadCredentials  = errors.New("incorrect password")
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// Token lifecycle.
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenInvalid   = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token has expired")
	ErrRefreshInvalid = errors.New("refresh token is invalid")
	ErrRefreshExpired = errors.New("refresh token has expired")

	// Request gating.
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden access")

	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation failed")
	ErrInternalServer = errors.New("internal server error")
)

// HTTPStatusFromError maps domain errors to HTTP status codes. Uniqueness
// conflicts surface as 400 (the register endpoint treats them as request
// errors), credential and token failures as 401, role failures as 403.
// Unexpected store errors stay 500 and are never downgraded to auth codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrBadCredentials),
		errors.Is(err, ErrTokenMalformed),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrRefreshInvalid),
		errors.Is(err, ErrRefreshExpired),
		errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManyAttempts):
		return http.StatusTooManyRequests
	}

	// Unique violations that slipped past the pre-checks (concurrent
	// registrations) still read as a client conflict, not a server fault.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
