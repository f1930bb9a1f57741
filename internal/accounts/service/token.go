package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// TokenService issues and verifies session tokens. Tokens are stateless:
// nothing is persisted and nothing is revoked before expiry.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration

	// Now overrides the issuing clock, mostly for tests.
	Now func() time.Time
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue signs a token whose subject is the user's ID.
func (s *TokenService) Issue(u domain.User) (IssuedToken, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(u.ID, u.Email, s.Issuer, ttl, s.now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign session token: %w", err)
	}

	return IssuedToken{Token: token, ExpiresAt: claims.ExpiresAtTime()}, nil
}

// Verify returns the subject of a valid token. Every failure wraps
// ErrInvalidToken together with the jwtx cause.
func (s *TokenService) Verify(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, jwtx.ErrMalformed)
	}

	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}
