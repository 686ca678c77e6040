// Package service holds the authentication core and the owner-scoped word
// operations.  Handlers translate the errors below into HTTP responses; no
// other error leaves this package without being wrapped as internal.
package service

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	// ErrUnauthenticated covers malformed, expired and unknown-subject
	// tokens alike.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound covers missing records and records of other owners alike.
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
