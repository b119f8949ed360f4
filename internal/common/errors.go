// Package common defines shared constants and sentinel errors used across
// the token engine. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Subject is required to issue credentials.
	ErrEmptySubject = errors.New("subject is empty")

	// Refresh credential is unknown, expired or superseded by a rotation.
	ErrInvalidCredential = errors.New("invalid refresh token")

	// Access token failed signature or structure verification.
	ErrMalformedToken = errors.New("malformed token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)
