package utils

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for stored secrets
    "encoding/hex"  // hex encoding
)

// NewResetSecret returns 32 random bytes hex-encoded (64 characters).  The
// raw value is mailed to the user; only HashToken(raw) is persisted.
func NewResetSecret() (string, error) {
    return randomHex(32)
}

// HashToken returns the SHA-256 hex digest of raw.  Storing only the hash
// keeps a leaked table from being usable to reset passwords.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
