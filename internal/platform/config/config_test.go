package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("unexpected default port: %s", cfg.APIPort)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("unexpected access TTL: %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected refresh TTL: %s", cfg.RefreshTokenTTL)
	}
	if cfg.LoginAttemptLimit != 10 {
		t.Fatalf("unexpected login attempt limit: %d", cfg.LoginAttemptLimit)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("JWT_SECRET", "a-sufficiently-long-hmac-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")
	t.Setenv("DB_NAME", "auth_test")

	cfg := Load()

	if cfg.APIPort != "9090" {
		t.Fatalf("unexpected port: %s", cfg.APIPort)
	}
	if string(cfg.JWTSecret) != "a-sufficiently-long-hmac-secret" {
		t.Fatal("JWT secret override not applied")
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("unexpected access TTL: %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 48*time.Hour {
		t.Fatalf("unexpected refresh TTL: %s", cfg.RefreshTokenTTL)
	}
	if cfg.DBConnStr == "" || cfg.DBName != "auth_test" {
		t.Fatalf("unexpected db config: %q", cfg.DBConnStr)
	}
}
