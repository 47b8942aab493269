// Package common defines shared constants and sentinel errors used across
// the server and the CLI client. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal             = errors.New("internal error")
	ErrDuplicateUser          = errors.New("user already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrSessionExpired         = errors.New("session expired")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrForbidden              = errors.New("forbidden")

	// Request validation errors.
	ErrValidation   = errors.New("validation error")
	ErrUnknownField = errors.New("unknown field")

	// Session cookie errors (malformed or badly signed token).
	ErrInvalidToken = errors.New("invalid token")
)
