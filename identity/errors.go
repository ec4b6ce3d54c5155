package identity

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrMissingEmail      = errors.New("email is required")
	ErrMissingPassword   = errors.New("password is required")
)
