// Package common defines shared constants and sentinel errors used across
// client and server layers of notekeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Note-specific errors.
	ErrorEmptyTitle    = errors.New("title must not be empty")
	ErrorNoteLocked    = errors.New("note is locked")
	ErrorWrongPassword = errors.New("wrong password")

	// Account errors.
	ErrorLoginAlreadyExists    = errors.New("login already exists")
	ErrorInvalidLoginFormat    = errors.New("invalid login format")
	ErrorInvalidPasswordFormat = errors.New("invalid password format")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
