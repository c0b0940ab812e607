package model

import "time"

// PasswordResetToken is a single-use credential.  Only the SHA-256 hash of
// the secret is stored.
type PasswordResetToken struct {
    ID        uint64
    UserID    uint64
    TokenHash string
    ExpiresAt time.Time
    UsedAt    *time.Time
    CreatedAt time.Time
}

// ValidAt reports whether the token is unused and unexpired at now.
func (t PasswordResetToken) ValidAt(now time.Time) bool {
    return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
