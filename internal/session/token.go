package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// TokenBytes is the number of random bytes in a session token. The token is
// hex-encoded to 64 characters for the cookie.
const TokenBytes = 32

// GenerateToken returns a new random session token.
func GenerateToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the SHA-256 hex digest of a raw token. Only the digest
// is stored, so a leaked table cannot be replayed as cookies.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidTokenFormat reports whether token looks like a GenerateToken value.
func ValidTokenFormat(token string) bool {
	if len(token) != TokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
