package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type UserService struct {
	Store  store.Store
	Hasher cryptox.PasswordHasher
	Tokens *TokenService

	// AllowAdminSignup honors the isAdmin flag on registration.
	AllowAdminSignup bool

	// Now overrides the clock used for timestamps, mostly for tests.
	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(1, cryptox.MaxPasswordLength)),
	)
}

// UpdateInput carries the fields to change. Nil or empty values leave the
// stored field as it is.
type UpdateInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, is.Email),
		validation.Field(&in.Password, validation.Length(1, cryptox.MaxPasswordLength)),
	)
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func invalidRequest(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}

// Register creates a user. The email pre-check gives an early answer; the
// directory insert is the authoritative uniqueness check.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	return s.register(ctx, in, s.AllowAdminSignup)
}

func (s *UserService) register(ctx context.Context, in RegisterInput, allowAdmin bool) (domain.User, error) {
	l := slogx.FromContext(ctx)

	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return domain.User{}, invalidRequest(err)
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, in.Email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	if in.IsAdmin && !allowAdmin {
		l.Warn("ignoring isAdmin on self-service registration", slog.String("email", in.Email))
		in.IsAdmin = false
	}

	now := s.now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", u.ID), slog.Bool("is_admin", u.IsAdmin))
	return u, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (IssuedToken, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return IssuedToken{}, err
		}
		// Burn the same CPU as a real check.
		_ = s.Hasher.Verify(password, s.dummy())
		l.Info("login failed", slog.String("reason", "unknown email"))
		return IssuedToken{}, ErrInvalidCredentials
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", slog.String("user_id", u.ID), slog.Any("error", err))
		}
		l.Info("login failed", slog.String("user_id", u.ID), slog.String("reason", "bad password"))
		return IssuedToken{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u)
	if err != nil {
		return IssuedToken{}, err
	}

	l.Info("login succeeded", slog.String("user_id", u.ID))
	return token, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			token = "dummy-password"
		}
		s.dummyHash, _ = s.Hasher.Hash(token)
	})
	return s.dummyHash
}

// List returns every user in insertion order.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// Update patches name, email and password. The ID and admin flag never change.
func (s *UserService) Update(ctx context.Context, id string, in UpdateInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
	}

	in.Name = nonEmpty(in.Name)
	in.Email = nonEmpty(in.Email)
	in.Password = nonEmpty(in.Password)
	if err := in.Validate(); err != nil {
		return domain.User{}, invalidRequest(err)
	}

	patch := domain.UserPatch{
		Name:      in.Name,
		Email:     in.Email,
		UpdatedAt: s.now(),
	}

	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return domain.User{}, err
		}
		patch.PasswordHash = &hash
	}

	u, err := s.Store.Users().UpdateUser(ctx, id, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, ErrUserNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.User{}, ErrEmailTaken
	case err != nil:
		return domain.User{}, err
	}

	l.Info("user updated", slog.String("user_id", id), slog.Bool("password_changed", in.Password != nil))
	return u, nil
}

// Delete removes a user. Tokens already issued to them stop resolving.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.Store.Users().DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("user deleted", slog.String("user_id", id))
	return nil
}

// EnsureAdmin seeds an admin account when the directory is empty. It does
// nothing once any user exists.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}

	if name == "" {
		name = "Administrator"
	}

	in := RegisterInput{Name: name, Email: email, Password: password, IsAdmin: true}
	if _, err := s.register(ctx, in, true); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := s.Hasher.Hash(password)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return "", invalidRequest(err)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
