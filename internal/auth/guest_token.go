package auth

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// MaxGuestTokenLength bounds the opaque guest token accepted from clients
const MaxGuestTokenLength = 128

// NewGuestToken mints an opaque token correlating a guest's sessions
func NewGuestToken() string {
	return uuid.NewString()
}

// HashGuestToken returns the hex blake2b-256 digest of a guest token.
// Only the digest is stored, so a leaked table cannot be used to finish or claim sessions.
func HashGuestToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateGuestToken checks the token shape before it is hashed
func ValidateGuestToken(token string) error {
	if token == "" {
		return fmt.Errorf("guest token is required")
	}
	if len(token) > MaxGuestTokenLength {
		return fmt.Errorf("guest token must be at most %d characters", MaxGuestTokenLength)
	}
	return nil
}
