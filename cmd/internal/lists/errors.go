package lists

import (
	"errors"
	"fmt"
)

// Error kinds. Stores classify every failure as exactly one of these so the
// HTTP layer can map not-found/ownership misses to 404, bad input to 400, and
// backend outages to 503.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("store unavailable")
)

// OpError carries the failing operation alongside its kind.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

func (e OpError) Unwrap() error { return e.Kind }

// IsNotFound reports whether err means the record does not exist or is not
// owned by the requesting user.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err was caused by bad caller input.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsUnavailable reports whether err was caused by a backing-store failure.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
