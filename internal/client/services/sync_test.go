package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/logging"
)

func pendingEntry(id, userID string, createdAt time.Time) *models.JournalEntry {
	return &models.JournalEntry{
		ID:         id,
		UserID:     userID,
		EntryDate:  createdAt,
		Content:    "content of " + id,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
		SyncStatus: models.SyncStatusPending,
	}
}

func TestPush_MarksSynced(t *testing.T) {
	ctx := context.Background()
	repo := newMemEntries()
	rem := newFakeRemote()
	svc := NewSyncService(repo, rem, logging.NewDefault(8))

	e := pendingEntry("e1", "u1", time.Now())
	require.NoError(t, repo.Create(ctx, e))

	require.NoError(t, svc.Push(ctx, "e1"))

	assert.Equal(t, []string{"e1"}, rem.upserted)
	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
}

func TestPush_DeletedEntryIsNoOp(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	svc := NewSyncService(newMemEntries(), rem, logging.NewDefault(8))

	require.NoError(t, svc.Push(ctx, "gone"))
	assert.Empty(t, rem.upserted)
}

func TestPushAllPending_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	repo := newMemEntries()
	rem := newFakeRemote()
	rem.failUpsertFor = map[string]error{"e2": errors.New("rls denied")}
	svc := NewSyncService(repo, rem, logging.NewDefault(8))

	base := time.Now()
	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, repo.Create(ctx, pendingEntry(id, "u1", base.Add(time.Duration(i)*time.Minute))))
	}

	synced, failed, err := svc.PushAllPending(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Equal(t, 1, failed)

	// the failed entry stays pending for the next pass
	left, err := repo.GetAllPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "e2", left[0].ID)
}

// staleListRepo serves a pending list captured before entries were deleted,
// the way a sync pass sees the world when a delete lands mid-pass.
type staleListRepo struct {
	*memEntries
	stale []*models.JournalEntry
}

func (r *staleListRepo) GetAllPending(ctx context.Context, userID string) ([]*models.JournalEntry, error) {
	return r.stale, nil
}

func TestPushAllPending_SkipsEntryDeletedMidPass(t *testing.T) {
	ctx := context.Background()
	repo := newMemEntries()
	rem := newFakeRemote()

	kept := pendingEntry("kept", "u1", time.Now())
	require.NoError(t, repo.Create(ctx, kept))
	gone := pendingEntry("gone", "u1", time.Now())

	// "gone" shows up in the pending list but no longer exists locally
	svc := NewSyncService(&staleListRepo{memEntries: repo, stale: []*models.JournalEntry{kept, gone}}, rem, logging.NewDefault(8))

	synced, failed, err := svc.PushAllPending(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Equal(t, 2, synced)

	// the deleted entry was never pushed back to the remote store
	assert.Equal(t, []string{"kept"}, rem.upserted)
}

func TestPushAllPending_NothingToDo(t *testing.T) {
	svc := NewSyncService(newMemEntries(), newFakeRemote(), logging.NewDefault(8))
	synced, failed, err := svc.PushAllPending(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, synced)
	assert.Zero(t, failed)
}
