package cryptox

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches what the legacy accounts API used.
const DefaultBcryptCost = 10

// MaxPasswordLength is the longest plaintext, in bytes, bcrypt accepts.
// Callers that may switch algorithms should hold every password to it.
const MaxPasswordLength = 72

// ErrPasswordTooLong is returned by Hash for plaintexts over MaxPasswordLength.
var ErrPasswordTooLong = errors.New("cryptox: password exceeds 72 bytes")

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("cryptox: bcrypt: %w", err)
	}
	return string(out), nil
}

// Verify delegates to bcrypt, which compares in constant time. Plaintexts
// bcrypt could never have hashed are a mismatch.
func (h *BcryptHasher) Verify(password, encodedHash string) error {
	if len(password) > MaxPasswordLength {
		return ErrPasswordMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
