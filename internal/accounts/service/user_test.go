package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("succeeds once per email", func(t *testing.T) {
		svc, _ := newTestServices(t)

		u, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "p1"})
		require.NoError(t, err)
		require.NotEmpty(t, u.ID)
		require.NotEqual(t, "p1", u.PasswordHash)
		require.Equal(t, u.CreatedAt, u.UpdatedAt)

		_, err = svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "p2"})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("validates input", func(t *testing.T) {
		svc, _ := newTestServices(t)

		for name, in := range map[string]RegisterInput{
			"missing email":     {Password: "p1"},
			"malformed email":   {Email: "nope", Password: "p1"},
			"missing password":  {Email: "a@x.com"},
			"password too long": {Email: "a@x.com", Password: strings.Repeat("a", 73)},
		} {
			_, err := svc.Register(ctx, in)
			require.ErrorIs(t, err, ErrInvalidRequest, name)
		}

		_, err := svc.Register(ctx, RegisterInput{Email: "max@x.com", Password: strings.Repeat("a", 72)})
		require.NoError(t, err)
	})

	t.Run("admin flag honors configuration", func(t *testing.T) {
		svc, _ := newTestServices(t)

		admin, err := svc.Register(ctx, RegisterInput{Email: "root@x.com", Password: "p", IsAdmin: true})
		require.NoError(t, err)
		require.True(t, admin.IsAdmin)

		svc.AllowAdminSignup = false
		plain, err := svc.Register(ctx, RegisterInput{Email: "sneaky@x.com", Password: "p", IsAdmin: true})
		require.NoError(t, err)
		require.False(t, plain.IsAdmin)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestServices(t)
	u, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	issued, err := svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	sub, err := svc.Tokens.Verify(issued.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, sub)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@x.com", "p1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "A@X.com", "p1")
	require.ErrorIs(t, err, ErrInvalidCredentials, "email match is case-sensitive")
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, clock := newTestServices(t)
	u, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	other, err := svc.Register(ctx, RegisterInput{Email: "b@x.com", Password: "p2"})
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Minute)

	t.Run("preserves id and admin flag", func(t *testing.T) {
		name, password := "Ada L.", "p3"
		updated, err := svc.Update(ctx, u.ID, UpdateInput{Name: &name, Password: &password})
		require.NoError(t, err)
		require.Equal(t, u.ID, updated.ID)
		require.Equal(t, "Ada L.", updated.Name)
		require.Equal(t, u.Email, updated.Email)
		require.Equal(t, u.IsAdmin, updated.IsAdmin)
		require.Equal(t, u.CreatedAt, updated.CreatedAt)
		require.True(t, updated.UpdatedAt.After(u.UpdatedAt))

		_, err = svc.Login(ctx, "a@x.com", "p1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.Login(ctx, "a@x.com", "p3")
		require.NoError(t, err)
	})

	t.Run("empty fields are left alone", func(t *testing.T) {
		empty := ""
		updated, err := svc.Update(ctx, u.ID, UpdateInput{Name: &empty, Email: &empty, Password: &empty})
		require.NoError(t, err)
		require.Equal(t, "Ada L.", updated.Name)
		require.Equal(t, "a@x.com", updated.Email)
	})

	t.Run("rejects malformed and taken emails", func(t *testing.T) {
		bad := "not-an-email"
		_, err := svc.Update(ctx, u.ID, UpdateInput{Email: &bad})
		require.ErrorIs(t, err, ErrInvalidRequest)

		taken := other.Email
		_, err = svc.Update(ctx, u.ID, UpdateInput{Email: &taken})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects passwords the hasher cannot take", func(t *testing.T) {
		long := strings.Repeat("a", 73)
		_, err := svc.Update(ctx, u.ID, UpdateInput{Password: &long})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("trims email like registration", func(t *testing.T) {
		padded := "  b@x.com "
		_, err := svc.Update(ctx, u.ID, UpdateInput{Email: &padded})
		require.ErrorIs(t, err, ErrEmailTaken)

		padded = " c@x.com\t"
		updated, err := svc.Update(ctx, u.ID, UpdateInput{Email: &padded})
		require.NoError(t, err)
		require.Equal(t, "c@x.com", updated.Email)

		_, err = svc.Login(ctx, "c@x.com", "p3")
		require.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing", UpdateInput{})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestServices(t)
	u, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	require.ErrorIs(t, svc.Delete(ctx, u.ID), ErrUserNotFound)

	_, err = svc.Get(ctx, u.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestServices(t)
	svc.AllowAdminSignup = false

	created, err := svc.EnsureAdmin(ctx, "root@x.com", "secret", "")
	require.NoError(t, err)
	require.True(t, created)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.True(t, users[0].IsAdmin)
	require.Equal(t, "Administrator", users[0].Name)

	created, err = svc.EnsureAdmin(ctx, "other@x.com", "secret", "Other")
	require.NoError(t, err)
	require.False(t, created, "seeding only happens on an empty directory")
}
