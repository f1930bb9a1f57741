package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash1, err := h.Hash("p1")
	require.NoError(t, err)
	hash2, err := h.Hash("p1")
	require.NoError(t, err)

	require.True(t, isBcryptHash(hash1))
	require.NotEqual(t, hash1, hash2)
	require.NoError(t, h.Verify("p1", hash1))
	require.ErrorIs(t, h.Verify("p2", hash1), ErrPasswordMismatch)
}

func TestBcryptDefaultCost(t *testing.T) {
	require.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).Cost)
}

func TestBcryptRejectsLongPasswords(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordLength+1))
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordLength))
	require.NoError(t, err)

	// An over-long attempt against a real hash is a mismatch, not a broken hash.
	encoded, err := h.Hash("p1")
	require.NoError(t, err)
	require.ErrorIs(t, h.Verify(strings.Repeat("a", MaxPasswordLength+1), encoded), ErrPasswordMismatch)
}

func TestBcryptVerify_InvalidHash(t *testing.T) {
	require.ErrorIs(t, NewBcryptHasher(bcrypt.MinCost).Verify("p1", "$2a$short"), ErrInvalidHash)
}

func TestMultiHasher(t *testing.T) {
	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := NewPasswordHasher("md5", "", 0)
		require.Error(t, err)
	})

	t.Run("defaults to argon2id", func(t *testing.T) {
		m, err := NewPasswordHasher("", "pepper", bcrypt.MinCost)
		require.NoError(t, err)

		hash, err := m.Hash("secret")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$"))
		require.NoError(t, m.Verify("secret", hash))
	})

	t.Run("verifies bcrypt hashes when argon2id is primary", func(t *testing.T) {
		legacy, err := NewBcryptHasher(bcrypt.MinCost).Hash("secret")
		require.NoError(t, err)

		m, err := NewPasswordHasher(AlgorithmArgon2id, "pepper", bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, m.Verify("secret", legacy))
		require.ErrorIs(t, m.Verify("nope", legacy), ErrPasswordMismatch)
	})

	t.Run("bcrypt primary", func(t *testing.T) {
		m, err := NewPasswordHasher("BCRYPT", "", bcrypt.MinCost)
		require.NoError(t, err)

		hash, err := m.Hash("secret")
		require.NoError(t, err)
		require.True(t, isBcryptHash(hash))
		require.NoError(t, m.Verify("secret", hash))
	})

	t.Run("unrecognised hash", func(t *testing.T) {
		m, err := NewPasswordHasher("", "", bcrypt.MinCost)
		require.NoError(t, err)
		require.ErrorIs(t, m.Verify("secret", "plaintext-secret"), ErrInvalidHash)
	})
}
