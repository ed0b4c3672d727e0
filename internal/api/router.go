package api

import (
	"net/http"
	"time"

	"authservice/internal/api/handler"
	"authservice/internal/api/middleware"
	"authservice/internal/app/service"
	"authservice/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(authService *service.AuthService, codec *security.TokenCodec) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService)

	r.Route("/auth", func(ar chi.Router) {
		// Public routes bypass the authentication gate entirely.
		ar.Group(func(pub chi.Router) {
			authHandler.RegisterPublicRoutes(pub)
		})

		// Everything else requires a verified bearer access token.
		ar.Group(func(priv chi.Router) {
			priv.Use(jwtauth.Verifier(codec.JWTAuth()))
			priv.Use(middleware.Authenticator)
			authHandler.RegisterProtectedRoutes(priv)
		})
	})

	return r
}
