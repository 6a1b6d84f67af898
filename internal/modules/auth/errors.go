package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("username or email already registered")
	ErrInvalidRole        = errors.New("invalid role")
)
