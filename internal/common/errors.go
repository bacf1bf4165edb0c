// Package common defines shared constants and sentinel errors used across
// the shell, the terminal UI and the backend. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Local cache errors.
	ErrCorrupt         = errors.New("cache file is corrupt")
	ErrInvalidBatch    = errors.New("invalid batch")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrInvalidAttempt  = errors.New("invalid sync attempt")

	// Transport errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrInternal = errors.New("internal error")
)
