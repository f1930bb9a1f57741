package memory

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
)

type usersRepo struct {
	s *Store
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.byID[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return r.s.users[i], nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.byEmail[email]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return r.s.users[i], nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return slices.Clone(r.s.users), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byEmail[u.Email]; ok {
		return store.ErrAlreadyExists
	}
	if _, ok := r.s.byID[u.ID]; ok {
		return store.ErrAlreadyExists
	}

	r.s.users = append(r.s.users, u)
	r.s.byID[u.ID] = len(r.s.users) - 1
	r.s.byEmail[u.Email] = len(r.s.users) - 1
	return nil
}

func (r *usersRepo) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, ok := r.s.byID[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}

	current := r.s.users[i]
	updated := patch.Apply(current)

	if updated.Email != current.Email {
		if owner, taken := r.s.byEmail[updated.Email]; taken && owner != i {
			return domain.User{}, store.ErrAlreadyExists
		}
		delete(r.s.byEmail, current.Email)
		r.s.byEmail[updated.Email] = i
	}

	r.s.users[i] = updated
	return updated, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, ok := r.s.byID[id]
	if !ok {
		return store.ErrNotFound
	}

	r.s.users = slices.Delete(r.s.users, i, i+1)
	r.s.reindex()
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.users) == 0, nil
}
