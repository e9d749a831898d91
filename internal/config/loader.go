package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort  int
	SQLiteDSN string

	// RedisAddr selects the ephemeral store backend. An empty value falls
	// back to the in-process store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SMTPAddr     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values, and aggregates every missing or malformed entry into one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:roombook.db?_pragma=foreign_keys(1)",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("ROOMBOOK_REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("ROOMBOOK_REDIS_PASSWORD")
	if dbValue := strings.TrimSpace(os.Getenv("ROOMBOOK_REDIS_DB")); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "ROOMBOOK_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}

	if secret := strings.TrimSpace(os.Getenv("ROOMBOOK_JWT_SECRET")); secret == "" {
		missing = append(missing, "ROOMBOOK_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROOMBOOK_ACCESS_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMBOOK_ACCESS_TOKEN_TTL")
		} else {
			cfg.AccessTokenTTL = ttl
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROOMBOOK_REFRESH_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMBOOK_REFRESH_TOKEN_TTL")
		} else {
			cfg.RefreshTokenTTL = ttl
		}
	}

	cfg.SMTPAddr = strings.TrimSpace(os.Getenv("ROOMBOOK_SMTP_ADDR"))
	cfg.SMTPFrom = strings.TrimSpace(os.Getenv("ROOMBOOK_SMTP_FROM"))
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("ROOMBOOK_SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("ROOMBOOK_SMTP_PASSWORD")
	if cfg.SMTPAddr != "" && cfg.SMTPFrom == "" {
		missing = append(missing, "ROOMBOOK_SMTP_FROM")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables carry invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
