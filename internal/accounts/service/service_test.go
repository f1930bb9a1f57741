package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/memory"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestServices(t *testing.T) (*UserService, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	signer, err := jwtx.NewHS256Signer(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256Verifier(testSecret, jwtx.VerifyOptions{Issuer: "accounts-test", Now: clock.Now})
	require.NoError(t, err)

	return &UserService{
		Store:  memory.NewStore(),
		Hasher: cryptox.NewBcryptHasher(4),
		Tokens: &TokenService{
			Signer:   signer,
			Verifier: verifier,
			Issuer:   "accounts-test",
			TTL:      jwtx.DefaultSessionTTL,
			Now:      clock.Now,
		},
		AllowAdminSignup: true,
		Now:              clock.Now,
	}, clock
}
