package auth

import "errors"

var (
	// ErrUserExists is returned when signing up with a registered email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned for missing, expired or revoked sessions.
	ErrUnauthorized = errors.New("unauthorized")
)
