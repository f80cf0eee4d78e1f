package session

import (
	"crypto/rand"
	"encoding/hex"
)

// newRefreshToken returns a cryptographically random opaque token.
//
// Hex encoding keeps it URL- and header-safe. The token carries no structure
// and no relation to any user id: possession of the id reveals nothing about
// the token, and the token parses to no claim.
func newRefreshToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
