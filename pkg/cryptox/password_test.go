package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgon2idHash(t *testing.T) {
	h := NewArgon2idHasher("test-pepper")

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "argon2id", parts[1])
			require.Equal(t, "v=19", parts[2])
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")
			require.NotContains(t, hash, tt.password+"test-pepper")

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestArgon2idHash_UniqueSalts(t *testing.T) {
	h := NewArgon2idHasher("")

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("samepassword", hash1))
	require.NoError(t, h.Verify("samepassword", hash2))
}

func TestArgon2idVerify_WrongPassword(t *testing.T) {
	h := NewArgon2idHasher("")
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		strings.Repeat("x", 10000),
	} {
		require.ErrorIs(t, h.Verify(wrong, hash), ErrPasswordMismatch, "input %q", wrong)
	}
}

func TestArgon2idVerify_PepperMatters(t *testing.T) {
	hash, err := NewArgon2idHasher("pepper-a").Hash("password")
	require.NoError(t, err)

	require.NoError(t, NewArgon2idHasher("pepper-a").Verify("password", hash))
	require.ErrorIs(t, NewArgon2idHasher("pepper-b").Verify("password", hash), ErrPasswordMismatch)
}

func TestArgon2idVerify_UsesEmbeddedParameters(t *testing.T) {
	weak := &Argon2idHasher{Params: Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 16, SaltLength: 8}}
	hash, err := weak.Hash("password")
	require.NoError(t, err)
	require.Contains(t, hash, "m=1024,t=1,p=1")

	// A hasher with the default (stronger) params still verifies it.
	require.NoError(t, NewArgon2idHasher("").Verify("password", hash))
}

func TestArgon2idVerify_InvalidHashFormat(t *testing.T) {
	h := NewArgon2idHasher("")

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"zero iterations", "$argon2id$v=19$m=19456,t=0,p=1$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing version", "$argon2id$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify("test-password", tt.invalidHash), ErrInvalidHash)
		})
	}
}
