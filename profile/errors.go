package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmptyEmail      = errors.New("profile email is required")
)
