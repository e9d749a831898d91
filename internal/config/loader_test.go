package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"ROOMBOOK_HTTP_PORT",
			"ROOMBOOK_SQLITE_DSN",
			"ROOMBOOK_REDIS_ADDR",
			"ROOMBOOK_ACCESS_TOKEN_TTL",
			"ROOMBOOK_REFRESH_TOKEN_TTL",
			"ROOMBOOK_SMTP_ADDR",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("ROOMBOOK_JWT_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:roombook.db?_pragma=foreign_keys(1)" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.JWTSecret != secret {
			t.Fatalf("expected JWT secret to be %q, got %q", secret, cfg.JWTSecret)
		}
		if cfg.AccessTokenTTL != 30*time.Minute {
			t.Fatalf("expected default access TTL 30m, got %s", cfg.AccessTokenTTL)
		}
		if cfg.RefreshTokenTTL != 7*24*time.Hour {
			t.Fatalf("expected default refresh TTL 168h, got %s", cfg.RefreshTokenTTL)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"ROOMBOOK_JWT_SECRET",
			"ROOMBOOK_HTTP_PORT",
			"ROOMBOOK_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: ROOMBOOK_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("ROOMBOOK_JWT_SECRET", "secret-value")
		t.Setenv("ROOMBOOK_HTTP_PORT", "9090")
		t.Setenv("ROOMBOOK_SQLITE_DSN", "file:/tmp/roombook.db")
		t.Setenv("ROOMBOOK_ACCESS_TOKEN_TTL", "15m")
		t.Setenv("ROOMBOOK_REFRESH_TOKEN_TTL", "72h")
		t.Setenv("ROOMBOOK_REDIS_ADDR", "localhost:6379")
		t.Setenv("ROOMBOOK_REDIS_DB", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.AccessTokenTTL != 15*time.Minute {
			t.Fatalf("expected access TTL 15m, got %s", cfg.AccessTokenTTL)
		}
		if cfg.RefreshTokenTTL != 72*time.Hour {
			t.Fatalf("expected refresh TTL 72h, got %s", cfg.RefreshTokenTTL)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/roombook.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
			t.Fatalf("unexpected redis settings: %q db=%d", cfg.RedisAddr, cfg.RedisDB)
		}
	})

	t.Run("rejects malformed numeric values", func(t *testing.T) {
		t.Setenv("ROOMBOOK_JWT_SECRET", "secret-value")
		t.Setenv("ROOMBOOK_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed port")
		}
	})

	t.Run("requires a sender when SMTP is configured", func(t *testing.T) {
		t.Setenv("ROOMBOOK_JWT_SECRET", "secret-value")
		t.Setenv("ROOMBOOK_HTTP_PORT", "8080")
		t.Setenv("ROOMBOOK_SMTP_ADDR", "smtp.example.com:587")
		if err := os.Unsetenv("ROOMBOOK_SMTP_FROM"); err != nil {
			t.Fatalf("failed to unset ROOMBOOK_SMTP_FROM: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for missing SMTP sender")
		}
	})
}
