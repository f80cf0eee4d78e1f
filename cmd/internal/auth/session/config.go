package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines runtime configuration for the session subsystem.
//
// It controls access-token TTL, the refresh-session TTL, refresh entropy size,
// and the HMAC signing secret for access tokens. The struct is intentionally
// explicit and environment-driven so deployments can tune security parameters
// without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of access tokens.
	Issuer string

	// AccessTokenTTL defines the lifetime of signed access tokens.
	AccessTokenTTL time.Duration

	// RefreshTTL defines the lifetime of a refresh session record, fixed at
	// creation time.
	RefreshTTL time.Duration

	// RefreshTokenBytes defines the number of random bytes behind each opaque
	// refresh token (hex-encoded on the wire).
	RefreshTokenBytes int

	// JWTSecret is the server-wide HMAC secret used to sign access tokens.
	// It is loaded once at startup and must never be logged.
	JWTSecret []byte
}

// DefaultConfig returns defaults suitable for development.
//
// Production environments should override values via environment variables.
func DefaultConfig() Config {
	return Config{
		Issuer:            "taskboard",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTTL:        10 * 24 * time.Hour,
		RefreshTokenBytes: 64,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - TASKBOARD_JWT_SECRET (min 32 bytes)
//
// Optional (durations must be valid Go duration strings):
//   - TASKBOARD_AUTH_ISSUER
//   - TASKBOARD_AUTH_ACCESS_TTL
//   - TASKBOARD_AUTH_REFRESH_TTL
//   - TASKBOARD_AUTH_REFRESH_TOKEN_BYTES
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("TASKBOARD_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("TASKBOARD_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("TASKBOARD_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTTL = d
	}

	if v := os.Getenv("TASKBOARD_AUTH_REFRESH_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 128 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenBytes = n
	}

	secret := os.Getenv("TASKBOARD_JWT_SECRET")
	if len(secret) < 32 {
		return Config{}, ErrConfig
	}
	cfg.JWTSecret = []byte(secret)

	return cfg, nil
}
