package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization for uniqueness
// checks and login lookups. The original-cased address is preserved on the
// user record; the policy is fixed at creation time.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
