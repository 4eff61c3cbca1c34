package cli

import (
	"errors"

	"github.com/obexhq/obex/internal/client/analysis"
	"github.com/obexhq/obex/internal/client/remote"
	"github.com/obexhq/obex/internal/common"
)

// describeError turns a service error into a short message suitable for the
// terminal. Raw transport details stay in the logs; the user gets a plain
// sentence and, where possible, a hint at what to do next.
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, remote.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, remote.ErrEmailNotConfirmed):
		return "Check your inbox and confirm your email, then sign in."
	case errors.Is(err, remote.ErrWeakPassword):
		return "That password is too weak, pick a longer one."
	case errors.Is(err, remote.ErrAlreadyRegistered):
		return "An account with this email already exists. Try signing in."
	case errors.Is(err, remote.ErrRateLimited):
		return "Too many attempts, wait a minute and try again."
	case errors.Is(err, common.ErrUnauthenticated):
		return "You need to sign in first."
	case errors.Is(err, common.ErrNotFound):
		return "Not found."
	case errors.Is(err, common.ErrValidation):
		return "That input is not valid: " + err.Error()
	case errors.Is(err, remote.ErrTransport):
		return "Could not reach the server. Your entries are safe locally and will sync later."
	case errors.Is(err, analysis.ErrAnalysisFailed), errors.Is(err, analysis.ErrMissingCredential):
		return "AI analysis is unavailable right now; the entry was saved without it."
	default:
		// Unclassified errors carry driver or SDK text that belongs in the
		// logs, not on the terminal.
		return "Something went wrong. Please try again."
	}
}
