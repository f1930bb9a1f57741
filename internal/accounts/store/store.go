package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (memory, sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error
}

// Users is the user directory. Every method is safe for concurrent use and
// returns copies; callers never share a record with the directory.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. The match is case-sensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns every user in insertion order.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// The email uniqueness check and the insert are atomic; a duplicate
	// yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser applies patch and returns the stored result. It yields
	// ErrAlreadyExists when the new email belongs to another user.
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error)

	// DeleteUser removes the user permanently.
	DeleteUser(ctx context.Context, id string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}
