package domain

import (
	"errors"
	"fmt"
)

// FetchError reports a failed read from the event store.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch events (%s): %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AuthError is a failed sign in, sign up or session restore.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError is a client-side form check failure. Message is meant
// to be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
