package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authservice/internal/api"
	"authservice/internal/app/service"
	"authservice/internal/common/security"
	"authservice/internal/domain/repository"
	"authservice/internal/platform/config"
	"authservice/internal/platform/database"
	"authservice/internal/platform/limiter"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize Token Codec
	codec := security.NewTokenCodec(cfg.JWTSecret)

	// 3. Initialize Database
	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	// 4. Initialize Redis (login throttling)
	rdb, err := limiter.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected.")

	// 5. Initialize Repositories & Services
	userRepo := repository.NewPgUserRepository(db)
	loginLimiter := limiter.NewLoginLimiter(rdb, cfg.LoginAttemptLimit, cfg.LoginAttemptWindow)
	authService := service.NewAuthService(userRepo, codec, loginLimiter, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(authService, codec)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
