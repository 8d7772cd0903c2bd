// Package common defines shared constants and sentinel errors used across
// FragKeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrObjectExists = errors.New("object already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrAccessDenied   = errors.New("access denied")

	// Auth errors (invalid, malformed or expired access token).
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccessTokenExpired = errors.New("access token expired")

	// Cipher errors. ErrKeyMismatch is always reported together with
	// ErrIntegrity, so errors.Is(err, ErrIntegrity) holds for both.
	ErrIntegrity    = errors.New("integrity check failed")
	ErrKeyMismatch  = errors.New("key mismatch")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidKey   = errors.New("invalid key")

	// Fragment errors.
	ErrMissingFragment     = errors.New("missing fragment")
	ErrDuplicateFragment   = errors.New("duplicate fragment")
	ErrUnexpectedFragment  = errors.New("unexpected fragment")
	ErrInvalidFragmentSize = errors.New("invalid fragment size")

	// Descriptor errors.
	ErrInvalidDescriptor = errors.New("invalid descriptor")
)
