package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const resetTokenBytes = 32

// GenerateResetToken returns 32 bytes of cryptographically secure randomness
// hex-encoded. The token's own entropy is the security boundary, so its
// stored form is a plain sha256 digest rather than a slow hash.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashResetToken computes the deterministic digest persisted in place of the
// raw token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
