package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash1, err := h.Hash("s3cret!!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash1, "$2a$"), "unexpected hash prefix: %s", hash1)
	assert.NotContains(t, hash1, "s3cret!!")

	hash2, err := h.Hash("s3cret!!")
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2, "salt must make hashes unique")
}

func TestBcryptHasher_Verify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cret!!")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct password", "s3cret!!", true},
		{"wrong password", "s3cret!?", false},
		{"empty password", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(tt.password, hash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	prefix := strings.Repeat("x", 72)

	_, err := h.Hash(prefix + "y")
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)

	hash, err := h.Hash(prefix)
	require.NoError(t, err)
	ok, err := h.Verify(prefix+"y", hash)
	require.NoError(t, err)
	assert.False(t, ok, "input past 72 bytes must not match its prefix")
}

func TestBcryptHasher_VerifyMalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	ok, err := h.Verify("s3cret!!", "not-a-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 10, NewBcryptHasher(10).cost)
}
