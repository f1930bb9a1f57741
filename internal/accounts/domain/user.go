package domain

import "time"

// User is an account record. Email is unique and compared case-sensitively.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string `json:"-"` // argon2id or bcrypt encoded
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch lists the fields an update may change. Nil fields are untouched.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	UpdatedAt    time.Time
}

// Apply returns u with the patch applied. UpdatedAt never moves backwards.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.UpdatedAt.After(u.UpdatedAt) {
		u.UpdatedAt = p.UpdatedAt
	}
	return u
}
