// Package services contains the client's business logic: authentication and
// session lifecycle, the journal orchestrator, and entry synchronization.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/obexhq/obex/internal/client/remote"
	"github.com/obexhq/obex/internal/client/repositories/entries"
	"github.com/obexhq/obex/internal/common"
	"github.com/obexhq/obex/internal/logging"
)

// SyncService pushes locally written entries to the remote table store.
// Sync is one-directional (local wins) and at-least-once: an entry stays
// pending until a push succeeds, and re-pushing a synced entry is harmless
// because the remote write is an upsert keyed by entry id.
type SyncService struct {
	entries entries.Repository
	store   remote.TableStore
	log     logging.Logger
}

func NewSyncService(repo entries.Repository, store remote.TableStore, log logging.Logger) *SyncService {
	return &SyncService{entries: repo, store: store, log: log}
}

// Push uploads one entry by id and marks it synced locally. An entry deleted
// between scheduling and execution is treated as success: there is nothing
// left to push.
func (s *SyncService) Push(ctx context.Context, entryID string) error {
	entry, err := s.entries.GetByID(ctx, entryID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load entry for sync: %w", err)
	}

	if err := s.store.UpsertEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to push entry %s: %w", entryID, err)
	}

	if err := s.entries.MarkSynced(ctx, entryID); err != nil {
		return fmt.Errorf("failed to mark entry %s synced: %w", entryID, err)
	}
	return nil
}

// PushAllPending uploads every pending entry for the user, oldest first.
// A failed push is logged and skipped so one bad entry does not block the
// rest of the queue; the counts tell the caller what happened. Each push
// goes through Push, which reloads the entry by id, so an entry deleted
// while the pass is running is skipped instead of resurrected remotely.
func (s *SyncService) PushAllPending(ctx context.Context, userID string) (synced, failed int, err error) {
	pending, err := s.entries.GetAllPending(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list pending entries: %w", err)
	}

	for _, entry := range pending {
		if err := s.Push(ctx, entry.ID); err != nil {
			s.log.Warn(ctx, "entry push failed", "entry_id", entry.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	if synced > 0 || failed > 0 {
		s.log.Info(ctx, "sync pass finished", "synced", synced, "failed", failed)
	}
	return synced, failed, nil
}
