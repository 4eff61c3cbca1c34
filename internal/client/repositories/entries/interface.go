package entries

import (
	"context"

	"github.com/obexhq/obex/internal/client/models"
)

// Repository describes CRUD and query operations for JournalEntry records.
// Implementations are backed by a local SQLite database. Every operation is
// durable and atomic at single-entry granularity.
type Repository interface {
	// Create inserts a new entry. The id must be unique.
	Create(ctx context.Context, entry *models.JournalEntry) error

	// GetByID returns an entry by its identifier, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.JournalEntry, error)

	// GetAllByUser returns the user's entries sorted by creation time,
	// newest first.
	GetAllByUser(ctx context.Context, userID string) ([]models.JournalEntry, error)

	// Update replaces all mutable columns of an existing entry.
	// Returns common.ErrNotFound when the id is absent.
	Update(ctx context.Context, entry *models.JournalEntry) error

	// DeleteByID removes an entry. Returns common.ErrNotFound when absent.
	DeleteByID(ctx context.Context, id string) error

	// GetAllPending returns the user's entries whose sync status is still
	// pending, oldest first so pushes happen in creation order.
	GetAllPending(ctx context.Context, userID string) ([]*models.JournalEntry, error)

	// MarkSynced flips an entry's sync status to synced. Marking an entry
	// that no longer exists is not an error.
	MarkSynced(ctx context.Context, id string) error

	// DeleteSyncedByUser removes the user's entries that have already been
	// pushed. Pending entries are kept so unsynced words are never lost.
	// A user with no synced entries is not an error.
	DeleteSyncedByUser(ctx context.Context, userID string) error
}
