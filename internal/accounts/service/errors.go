package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidRequest     = errors.New("invalid_request")
)
