package middleware

import (
	"context"
	"errors"
	"net/http"

	"authservice/internal/common"
	"authservice/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

// Identity is the resolved caller of an authenticated request. It is
// attached to the request context by Authenticator and read-only for the
// rest of that request's handling.
type Identity struct {
	Subject string // user email, the token subject
	Role    string
}

type contextKey string

const identityCtxKey contextKey = "identity"

// Authenticator gates requests behind a verified bearer token. It runs
// after jwtauth.Verifier, which extracts the token from the Authorization
// header and checks signature and expiry; this handler maps verification
// outcomes to the error taxonomy and resolves the caller's identity.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			switch {
			case errors.Is(err, jwtauth.ErrNoTokenFound):
				common.RespondWithDomainError(w, common.ErrUnauthenticated)
			case errors.Is(err, jwtauth.ErrExpired):
				common.RespondWithDomainError(w, common.ErrTokenExpired)
			default:
				common.RespondWithDomainError(w, common.ErrTokenInvalid)
			}
			return
		}

		if token == nil {
			common.RespondWithDomainError(w, common.ErrUnauthenticated)
			return
		}

		subject, ok := claims["sub"].(string)
		if !ok || subject == "" {
			common.RespondWithDomainError(w, common.ErrTokenMalformed)
			return
		}
		role, _ := claims["role"].(string)

		ctx := context.WithValue(r.Context(), identityCtxKey, Identity{Subject: subject, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards role-gated routes. It must run after Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			common.RespondWithDomainError(w, common.ErrUnauthenticated)
			return
		}
		if identity.Role != model.RoleAdmin {
			common.RespondWithDomainError(w, common.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext returns the identity resolved by Authenticator.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey).(Identity)
	return identity, ok
}
