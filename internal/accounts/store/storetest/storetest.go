// Package storetest holds the behaviour every store driver must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, migrated, empty store.
type Factory func(t *testing.T) store.Store

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newUser(name, email string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: "$argon2id$fake",
		CreatedAt:    base,
		UpdatedAt:    base,
	}
}

func requireSameUser(t *testing.T, want, got domain.User) {
	t.Helper()

	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Email, got.Email)
	require.Equal(t, want.PasswordHash, got.PasswordHash)
	require.Equal(t, want.IsAdmin, got.IsAdmin)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %v got %v", want.CreatedAt, got.CreatedAt)
	require.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated_at: want %v got %v", want.UpdatedAt, got.UpdatedAt)
}

// Run exercises the Users repository of the stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		users := newStore(t).Users()

		empty, err := users.IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)

		u := newUser("Ada", "ada@example.com")
		u.IsAdmin = true
		require.NoError(t, users.CreateUser(ctx, u))

		got, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		requireSameUser(t, u, got)

		got, err = users.GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		requireSameUser(t, u, got)

		empty, err = users.IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})

	t.Run("missing records", func(t *testing.T) {
		users := newStore(t).Users()

		_, err := users.GetUserByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = users.GetUserByEmail(ctx, "nope@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = users.UpdateUser(ctx, "nope", domain.UserPatch{UpdatedAt: base})
		require.ErrorIs(t, err, store.ErrNotFound)

		require.ErrorIs(t, users.DeleteUser(ctx, "nope"), store.ErrNotFound)
	})

	t.Run("email is unique and case-sensitive", func(t *testing.T) {
		users := newStore(t).Users()

		require.NoError(t, users.CreateUser(ctx, newUser("Ada", "ada@example.com")))
		require.ErrorIs(t, users.CreateUser(ctx, newUser("Eve", "ada@example.com")), store.ErrAlreadyExists)
		require.NoError(t, users.CreateUser(ctx, newUser("Ada", "ADA@example.com")))

		_, err := users.GetUserByEmail(ctx, "Ada@Example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		users := newStore(t).Users()

		list, err := users.ListUsers(ctx)
		require.NoError(t, err)
		require.Empty(t, list)

		var want []string
		for i := range 5 {
			u := newUser(fmt.Sprintf("user %d", i), fmt.Sprintf("u%d@example.com", i))
			require.NoError(t, users.CreateUser(ctx, u))
			want = append(want, u.ID)
		}

		require.NoError(t, users.DeleteUser(ctx, want[1]))
		want = append(want[:1], want[2:]...)

		list, err = users.ListUsers(ctx)
		require.NoError(t, err)
		var got []string
		for _, u := range list {
			got = append(got, u.ID)
		}
		require.Equal(t, want, got)
	})

	t.Run("update patches fields and preserves identity", func(t *testing.T) {
		users := newStore(t).Users()

		u := newUser("Ada", "ada@example.com")
		require.NoError(t, users.CreateUser(ctx, u))

		name, email, hash := "Ada L.", "lovelace@example.com", "$argon2id$other"
		later := base.Add(time.Minute)
		updated, err := users.UpdateUser(ctx, u.ID, domain.UserPatch{
			Name:         &name,
			Email:        &email,
			PasswordHash: &hash,
			UpdatedAt:    later,
		})
		require.NoError(t, err)
		require.Equal(t, u.ID, updated.ID)
		require.Equal(t, name, updated.Name)
		require.Equal(t, email, updated.Email)
		require.Equal(t, hash, updated.PasswordHash)
		require.True(t, updated.CreatedAt.Equal(base))
		require.True(t, updated.UpdatedAt.Equal(later))

		stored, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		requireSameUser(t, updated, stored)

		_, err = users.GetUserByEmail(ctx, "ada@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := users.GetUserByEmail(ctx, email)
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("update never moves updated_at backwards", func(t *testing.T) {
		users := newStore(t).Users()

		u := newUser("Ada", "ada@example.com")
		require.NoError(t, users.CreateUser(ctx, u))

		updated, err := users.UpdateUser(ctx, u.ID, domain.UserPatch{UpdatedAt: base.Add(-time.Hour)})
		require.NoError(t, err)
		require.True(t, updated.UpdatedAt.Equal(base))
	})

	t.Run("update rejects another user's email", func(t *testing.T) {
		users := newStore(t).Users()

		ada := newUser("Ada", "ada@example.com")
		bob := newUser("Bob", "bob@example.com")
		require.NoError(t, users.CreateUser(ctx, ada))
		require.NoError(t, users.CreateUser(ctx, bob))

		taken := "ada@example.com"
		_, err := users.UpdateUser(ctx, bob.ID, domain.UserPatch{Email: &taken, UpdatedAt: base})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		stored, err := users.GetUserByID(ctx, bob.ID)
		require.NoError(t, err)
		require.Equal(t, "bob@example.com", stored.Email)

		same := "ada@example.com"
		_, err = users.UpdateUser(ctx, ada.ID, domain.UserPatch{Email: &same, UpdatedAt: base})
		require.NoError(t, err, "keeping your own email is not a conflict")
	})

	t.Run("delete is permanent", func(t *testing.T) {
		users := newStore(t).Users()

		u := newUser("Ada", "ada@example.com")
		require.NoError(t, users.CreateUser(ctx, u))
		require.NoError(t, users.DeleteUser(ctx, u.ID))

		_, err := users.GetUserByID(ctx, u.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, users.DeleteUser(ctx, u.ID), store.ErrNotFound)

		require.NoError(t, users.CreateUser(ctx, newUser("Ada again", "ada@example.com")),
			"email is free again after delete")
	})

	t.Run("concurrent registrations of one email admit exactly one", func(t *testing.T) {
		users := newStore(t).Users()

		const workers = 16
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := users.CreateUser(ctx, newUser(fmt.Sprintf("racer %d", i), "race@example.com"))
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
					return
				}
				if !errors.Is(err, store.ErrAlreadyExists) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, created)
		list, err := users.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		users := newStore(t).Users()

		u := newUser("Ada", "ada@example.com")
		require.NoError(t, users.CreateUser(ctx, u))

		list, err := users.ListUsers(ctx)
		require.NoError(t, err)
		list[0].Name = "mutated"

		got, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "Ada", got.Name)
	})
}
