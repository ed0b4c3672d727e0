package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPStatusFromError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrEmailTaken, http.StatusBadRequest},
		{ErrUsernameTaken, http.StatusBadRequest},
		{ErrBadRequest, http.StatusBadRequest},
		{fmt.Errorf("%w: password too short", ErrValidation), http.StatusBadRequest},
		{ErrUserNotFound, http.StatusUnauthorized},
		{ErrBadCredentials, http.StatusUnauthorized},
		{ErrTokenMalformed, http.StatusUnauthorized},
		{ErrTokenInvalid, http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{ErrRefreshInvalid, http.StatusUnauthorized},
		{ErrRefreshExpired, http.StatusUnauthorized},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrTooManyAttempts, http.StatusTooManyRequests},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusFromError(tc.err); got != tc.want {
			t.Fatalf("HTTPStatusFromError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRespondWithDomainError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RespondWithDomainError(rec, ErrForbidden)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), ErrForbidden.Error()) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	// Unexpected store errors stay internal and are never downgraded to
	// an auth status.
	rec = httptest.NewRecorder()
	RespondWithDomainError(rec, errors.New("pg: connection reset"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
