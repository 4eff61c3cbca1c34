package session

import (
	"context"

	"github.com/obexhq/obex/internal/client/models"
)

// Repository persists the single auth session between process restarts.
type Repository interface {
	// Load returns the stored session, or nil when it is absent, corrupt,
	// or already expired. Expired sessions are treated as absent; no
	// refresh is attempted here and no network call is made.
	Load(ctx context.Context) (*models.AuthSession, error)

	// Save overwrites any previously stored session.
	Save(ctx context.Context, s *models.AuthSession) error

	// Clear removes the stored session. Clearing an absent session is
	// not an error.
	Clear(ctx context.Context) error
}
