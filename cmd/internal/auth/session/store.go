package session

import (
	"context"
	"time"
)

// Session is one server-tracked refresh record, owned by its user.
//
// The refresh token is stored verbatim: clients present the exact stored
// value, and resolution is an equality scan over the user's records. Records
// are never mutated in place; logout is the only removal path.
type Session struct {
	// Seq is a store-assigned monotonic position preserving insertion order
	// within one user's session list.
	Seq int64

	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is the session persistence boundary.
//
// Append must be atomic at single-record granularity so concurrent logins
// from multiple devices never lose each other's records. ListByUser returns
// records in insertion order (ascending Seq).
type Store interface {
	Append(ctx context.Context, s Session) (Session, error)
	ListByUser(ctx context.Context, userID string) ([]Session, error)

	// Delete removes the session records of userID whose token equals token.
	// Deleting a token that matches nothing is a no-op.
	Delete(ctx context.Context, userID, token string) error
}
