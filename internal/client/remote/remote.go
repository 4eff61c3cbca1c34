// Package remote talks to the hosted backend: the identity provider
// (session issuance over HTTP JSON) and the row-level table store holding
// the profile and journal-entry tables.
package remote

import (
	"context"

	"github.com/obexhq/obex/internal/client/models"
)

// AuthEvent is an authentication-state change broadcast to subscribers.
type AuthEvent string

const (
	AuthEventSignedIn       AuthEvent = "signed_in"
	AuthEventSignedOut      AuthEvent = "signed_out"
	AuthEventTokenRefreshed AuthEvent = "token_refreshed"
)

// Identity covers the identity-provider operations and session state.
type Identity interface {
	// SignUp registers a new account. When the provider requires email
	// confirmation before issuing tokens, ErrEmailNotConfirmed is returned.
	SignUp(ctx context.Context, email, password string) (*models.AuthSession, error)

	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (*models.AuthSession, error)

	// SignOut revokes the current session server-side (best effort) and
	// always drops the in-memory session.
	SignOut(ctx context.Context) error

	// ResetPassword asks the provider to send a recovery email.
	ResetPassword(ctx context.Context, email string) error

	// RefreshSession exchanges the refresh token for a new pair.
	RefreshSession(ctx context.Context) (*models.AuthSession, error)

	// Session returns the current in-memory session, nil when signed out.
	Session() *models.AuthSession

	// SetSession installs a previously persisted session.
	SetSession(s *models.AuthSession)

	// Subscribe returns a channel of auth-state events for the lifetime
	// of the client. Slow consumers may miss events.
	Subscribe() <-chan AuthEvent
}

// ProfilePatch is one of the fixed partial profile updates. Exactly the set
// fields are written; the table client stamps updated_at on every patch.
type ProfilePatch struct {
	SelectedPath           *models.Path
	DisplayName            *string
	HasCompletedOnboarding *bool
	CurrentStreak          *int
	TotalEntries           *int
}

// TableStore covers the row-level operations against the profile and
// journal-entry tables, addressed by equality on the key column.
type TableStore interface {
	// FetchProfile returns the profile row for the user, or common.ErrNotFound.
	FetchProfile(ctx context.Context, userID string) (*models.UserProfile, error)

	// InsertProfile creates the initial profile row after signup.
	InsertProfile(ctx context.Context, p *models.UserProfile) error

	// UpdateProfile applies one partial update and returns the updated row.
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.UserProfile, error)

	// UpsertEntry inserts or replaces the remote row keyed by entry id.
	// Local state always wins; no conflict detection is attempted.
	UpsertEntry(ctx context.Context, e *models.JournalEntry) error

	// DeleteEntry removes the remote row. Deleting an absent row is not
	// an error.
	DeleteEntry(ctx context.Context, id string) error
}

// Client is the full remote surface used by the services.
type Client interface {
	Identity
	TableStore
	Close() error
}
