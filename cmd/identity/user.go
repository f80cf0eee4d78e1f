package identity

import (
	"context"
	"time"
)

// User is taskboard's canonical security principal.
//
// PasswordHash is the bcrypt encoding of the user's password; the plaintext is
// never persisted. Sessions live in the session store, keyed by the user id,
// in insertion order (one record per logged-in device).
type User struct {
	ID           string
	Email        string
	EmailNorm    string
	PasswordHash string

	CreatedAt time.Time
}

// CreateUserInput describes a signup request.
type CreateUserInput struct {
	Email    string
	Password string
	Now      time.Time
}

// Store is the credential persistence boundary.
//
// Uniqueness of the (normalized) email is enforced by the store. Lookups
// return an error satisfying IsNotFound when no user matches; infrastructure
// failures satisfy IsUnavailable instead so callers can keep auth failures
// and store outages in separate status families.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}
