package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, h.Verify(hash, "s3cret-pass"))
	assert.False(t, h.Verify(hash, "wrong"))
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
	assert.Equal(t, 6, NewBcryptHasher(6).Cost)
}

func TestGenerateTempPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := GenerateTempPassword()
		require.NoError(t, err)
		require.Len(t, p, TempPasswordLength)
		for _, r := range p {
			assert.True(t, strings.ContainsRune(tempAlphabet, r), "unexpected rune %q", r)
		}
		seen[p] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestHashTokenIsStable(t *testing.T) {
	raw, err := NewResetSecret()
	require.NoError(t, err)
	assert.Len(t, raw, 64)
	assert.Equal(t, HashToken(raw), HashToken(raw))
	assert.NotEqual(t, raw, HashToken(raw))
}
