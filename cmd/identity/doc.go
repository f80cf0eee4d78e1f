// Package identity implements taskboard's credential foundation.
//
// It owns the user record (email + password hash), bcrypt password hashing,
// ULID generation, and the credential store boundary consumed by the HTTP
// and session layers.
//
// This package is intentionally dependency-light and security-first.
package identity
