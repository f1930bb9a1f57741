// Package memory is an in-process user directory. Data lives for the
// lifetime of the Store.
package memory

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
)

type Store struct {
	mu sync.RWMutex

	users   []domain.User  // insertion order
	byID    map[string]int // id -> index into users
	byEmail map[string]int // email -> index into users
}

func NewStore() *Store {
	return &Store{
		byID:    make(map[string]int),
		byEmail: make(map[string]int),
	}
}

func (s *Store) Users() store.Users { return &usersRepo{s: s} }

// ApplyMigrations is a no-op; there is no schema.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// reindex rebuilds both indexes after a removal shifts positions.
// Callers hold the write lock.
func (s *Store) reindex() {
	clear(s.byID)
	clear(s.byEmail)
	for i, u := range s.users {
		s.byID[u.ID] = i
		s.byEmail[u.Email] = i
	}
}
