package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc, clock := newTestServices(t)
	u := domain.User{ID: "01J0USER", Email: "a@x.com"}

	issued, err := svc.Tokens.Issue(u)
	require.NoError(t, err)
	require.True(t, clock.t.Add(24*time.Hour).Equal(issued.ExpiresAt))

	for range 3 {
		sub, err := svc.Tokens.Verify(issued.Token)
		require.NoError(t, err)
		require.Equal(t, u.ID, sub)
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	t.Parallel()

	svc, clock := newTestServices(t)
	issued, err := svc.Tokens.Issue(domain.User{ID: "01J0USER"})
	require.NoError(t, err)

	clock.t = issued.ExpiresAt.Add(-time.Second)
	_, err = svc.Tokens.Verify(issued.Token)
	require.NoError(t, err)

	clock.t = issued.ExpiresAt
	_, err = svc.Tokens.Verify(issued.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	svc, _ := newTestServices(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Tokens.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", token)
	}
}

func TestTokenFromForeignSecret(t *testing.T) {
	t.Parallel()

	svc, _ := newTestServices(t)

	other, err := jwtx.NewHS256Signer([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	foreign := &TokenService{Signer: other, Issuer: "accounts-test"}

	issued, err := foreign.Issue(domain.User{ID: "01J0USER"})
	require.NoError(t, err)

	_, err = svc.Tokens.Verify(issued.Token)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}
