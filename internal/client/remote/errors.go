package remote

import "errors"

var (
	// ErrTransport covers network failures, timeouts and non-success
	// statuses that carry no classified error code.
	ErrTransport = errors.New("transport error")

	// Classified identity-provider failures.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrWeakPassword       = errors.New("weak password")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrRateLimited        = errors.New("rate limited")
)
