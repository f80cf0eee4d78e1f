package identity

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")

	// ErrUnavailable marks backing-store failures. Callers must surface it as a
	// 5xx-class condition, never as a credential problem.
	ErrUnavailable = errors.New("store_unavailable")
)
