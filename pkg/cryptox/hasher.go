package cryptox

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPasswordMismatch is returned when a plaintext does not match its hash.
	ErrPasswordMismatch = errors.New("cryptox: password does not match")

	// ErrInvalidHash is returned when a stored hash cannot be parsed.
	ErrInvalidHash = errors.New("cryptox: invalid password hash")
)

// Supported password hashing algorithms.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// PasswordHasher produces and checks one-way password hashes. Hash must salt
// every call so the same plaintext never yields the same output twice.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) error
}

// MultiHasher hashes new passwords with Primary and verifies any format it
// recognises, so records hashed under a previous configuration still log in.
type MultiHasher struct {
	Primary  PasswordHasher
	Argon2id *Argon2idHasher
	Bcrypt   *BcryptHasher
}

// NewPasswordHasher builds the hasher used by the service. pepper only
// applies to argon2id hashes; bcryptCost of 0 uses DefaultBcryptCost.
func NewPasswordHasher(algorithm, pepper string, bcryptCost int) (*MultiHasher, error) {
	m := &MultiHasher{
		Argon2id: NewArgon2idHasher(pepper),
		Bcrypt:   NewBcryptHasher(bcryptCost),
	}

	switch strings.ToLower(algorithm) {
	case "", AlgorithmArgon2id:
		m.Primary = m.Argon2id
	case AlgorithmBcrypt:
		m.Primary = m.Bcrypt
	default:
		return nil, fmt.Errorf("cryptox: unsupported password algorithm %q", algorithm)
	}

	return m, nil
}

func (m *MultiHasher) Hash(password string) (string, error) {
	return m.Primary.Hash(password)
}

func (m *MultiHasher) Verify(password, encodedHash string) error {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return m.Argon2id.Verify(password, encodedHash)
	case isBcryptHash(encodedHash):
		return m.Bcrypt.Verify(password, encodedHash)
	default:
		return ErrInvalidHash
	}
}
