// Package common defines shared constants and sentinel errors used across
// classauth components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Login errors. Unknown identifier and wrong password are deliberately
	// the same value so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrMissingToken          = errors.New("missing token")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)
