// Package common defines shared constants and sentinel errors used across
// SweatStreak components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound  = errors.New("not found")
	ErrorDuplicate = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Account-specific errors.
	ErrorAccountTaken       = errors.New("email or username already taken")
	ErrorInvalidCredentials = errors.New("invalid email/username or password")
	ErrorWeakPassword       = errors.New("password must be at least 8 characters, include a capital letter, and one number")

	// Social-graph errors.
	ErrorSelfFollow       = errors.New("cannot follow yourself")
	ErrorAlreadyFollowing = errors.New("already following this user")

	// Post-specific errors.
	ErrorAlreadyPostedToday = errors.New("already posted today")
	ErrorEmptyComment       = errors.New("comment text is empty")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
