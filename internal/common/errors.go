// Package common defines shared sentinel errors used across the service,
// repository, and HTTP layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Login errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnconfirmed        = errors.New("email address not confirmed")

	// Token errors. ErrInvalidToken covers access tokens,
	// ErrUnprocessableToken covers email confirmation tokens; they stay
	// distinct so callers can produce different user-facing messages.
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnprocessableToken = errors.New("invalid email verification token")

	// Confirmation flow errors.
	ErrAlreadyConfirmed = errors.New("email already confirmed")

	// Auth errors (valid-looking token but no matching identity).
	ErrUnauthorized = errors.New("unauthorized")
)
