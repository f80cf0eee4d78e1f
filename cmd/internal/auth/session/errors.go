package session

import "errors"

var (
	// ErrInvalidSignature is returned when an access token fails signature or
	// structural verification. Any single flipped bit lands here.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired is returned when an access token is past its expiry claim.
	ErrTokenExpired = errors.New("token expired")

	// ErrUserNotFound is returned when the claimed user id resolves to no user.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned when a refresh token matches none of the
	// user's session records.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the matched session record is past its
	// expiry. The record itself is left in place.
	ErrSessionExpired = errors.New("session expired")

	// ErrStoreUnavailable marks backing-store failures. It is a distinct kind
	// from the auth failures above and must surface as 5xx, never 401.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
