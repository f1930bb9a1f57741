package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite/gen"
)

type usersRepo struct {
	db *sql.DB
	q  *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		u, err := mapUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    formatTime(u.CreatedAt),
		UpdatedAt:    formatTime(u.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	var updated domain.User
	err := withTx(ctx, r.db, r.q, func(q *gen.Queries) error {
		row, err := q.GetUserByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}

		current, err := mapUser(row)
		if err != nil {
			return err
		}
		updated = patch.Apply(current)

		return mapConstraint(q.UpdateUser(ctx, gen.UpdateUserParams{
			Name:         updated.Name,
			Email:        updated.Email,
			PasswordHash: updated.PasswordHash,
			UpdatedAt:    formatTime(updated.UpdatedAt),
			ID:           id,
		}))
	})
	if err != nil {
		return domain.User{}, err
	}
	return updated, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	n, err := r.q.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.q.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
