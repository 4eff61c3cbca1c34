// Package common defines shared constants and sentinel errors used across
// the Obex client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal        = errors.New("internal error")
	ErrUnauthenticated = errors.New("unauthenticated")

	// Validation errors raised before any remote call is made.
	ErrValidation = errors.New("validation error")
)
