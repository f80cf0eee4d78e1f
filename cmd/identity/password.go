package identity

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Password hashing (bcrypt).
//
// bcrypt embeds a per-call random salt in the encoded hash, so two hashes of
// the same plaintext differ while both verify. Comparison is performed by the
// library in constant time with respect to the mismatch position.

const (
	// bcryptCost balances hashing latency against brute-force resistance.
	bcryptCost = 10

	// MinPasswordLength is the signup policy baseline.
	MinPasswordLength = 8

	// maxPasswordLength guards bcrypt's 72-byte input limit.
	maxPasswordLength = 72
)

var (
	// ErrPasswordTooShort is returned by HashPassword for sub-policy input.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrPasswordTooLong is returned when the input exceeds bcrypt's limit.
	ErrPasswordTooLong = errors.New("password too long")
)

// HashPassword returns the bcrypt encoding of plain.
//
// It is called exactly when the plaintext password field is set or changed;
// unrelated user updates must never re-hash an already-hashed value.
func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(plain) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
//
// A mismatch is a boolean false, not an error: the caller surfaces it as an
// authentication failure. Only a malformed stored hash produces an error.
func VerifyPassword(plain, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
