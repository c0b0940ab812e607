package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes and verifies passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher clamps cost into bcrypt's accepted range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash returns the bcrypt hash of plain.
func (h BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify safely compares bcrypt hash and plain password.
func (h BcryptHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Ambiguous characters (0/O, 1/l/I) are left out so a password read aloud
// or copied by hand survives.
const tempAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// TempPasswordLength is the length of generated one-time passwords.
const TempPasswordLength = 12

// GenerateTempPassword returns a random password drawn uniformly from
// tempAlphabet using crypto/rand.
func GenerateTempPassword() (string, error) {
	max := big.NewInt(int64(len(tempAlphabet)))
	out := make([]byte, TempPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tempAlphabet[n.Int64()]
	}
	return string(out), nil
}
