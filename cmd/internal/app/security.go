package app

import (
	"errors"
	"os"
)

// ValidateSecurityConfig enforces taskboard's security policy at startup.
//
// Fail-fast is intentional: a server that silently starts without a signing
// secret, or with a wide-open CORS policy in front of a real database, is a
// misconfiguration that should never reach traffic.
func ValidateSecurityConfig(cfg Config) error {
	secret := os.Getenv("TASKBOARD_JWT_SECRET")
	if secret == "" {
		return errors.New("security policy: TASKBOARD_JWT_SECRET is missing")
	}
	// Bytes, not runes: the secret feeds HMAC-SHA256 as raw key material.
	if len(secret) < 32 {
		return errors.New("security policy: TASKBOARD_JWT_SECRET is too short (min 32 bytes)")
	}

	if cfg.DatabaseURL != "" && cfg.CORSAllowCredentials {
		for _, o := range cfg.CORSAllowedOrigins {
			if o == "*" {
				return errors.New("security policy: wildcard CORS origin cannot be combined with credentials")
			}
		}
	}

	return nil
}
