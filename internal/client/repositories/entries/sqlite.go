package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/common"
	"github.com/obexhq/obex/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const entryColumns = `id, user_id, entry_date, path, title, content, mood,
	ai_summary, ai_reflection, ai_insights, voice_note_ref, voice_transcript,
	tags, is_private, created_at, updated_at, sync_status`

// Create inserts a new entry row.
func (r *SQLiteRepository) Create(ctx context.Context, e *models.JournalEntry) error {
	tags, insights, err := packLists(e)
	if err != nil {
		return err
	}

	query := `INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.EntryDate, string(e.Path), e.Title, e.Content, moodArg(e.Mood),
		e.AISummary, e.AIReflection, insights, e.VoiceNoteRef, e.VoiceTranscript,
		tags, e.IsPrivate, e.CreatedAt, e.UpdatedAt, string(e.SyncStatus))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// GetByID returns a single entry or common.ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

// GetAllByUser lists the user's entries, newest first.
func (r *SQLiteRepository) GetAllByUser(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
		WHERE user_id = ? ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update replaces all mutable columns. Expects exactly one row affected.
func (r *SQLiteRepository) Update(ctx context.Context, e *models.JournalEntry) error {
	tags, insights, err := packLists(e)
	if err != nil {
		return err
	}

	query := `UPDATE entries SET
		entry_date = ?, path = ?, title = ?, content = ?, mood = ?,
		ai_summary = ?, ai_reflection = ?, ai_insights = ?,
		voice_note_ref = ?, voice_transcript = ?,
		tags = ?, is_private = ?, updated_at = ?, sync_status = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.EntryDate, string(e.Path), e.Title, e.Content, moodArg(e.Mood),
		e.AISummary, e.AIReflection, insights,
		e.VoiceNoteRef, e.VoiceTranscript,
		tags, e.IsPrivate, e.UpdatedAt, string(e.SyncStatus),
		e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return oneRowAffected(res)
}

// DeleteByID removes an entry row.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return oneRowAffected(res)
}

// GetAllPending returns pending entries, oldest first.
func (r *SQLiteRepository) GetAllPending(ctx context.Context, userID string) ([]*models.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
		WHERE user_id = ? AND sync_status = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID, string(models.SyncStatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to select pending entries: %w", err)
	}
	defer rows.Close()

	var pending []*models.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		pending = append(pending, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

// MarkSynced flips sync_status to synced. A missing row is a no-op: the entry
// may have been deleted while its push was in flight.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sync_status = ? WHERE id = ?`,
		string(models.SyncStatusSynced), id)
	if err != nil {
		return fmt.Errorf("failed to mark entry synced: %w", err)
	}
	return nil
}

// DeleteSyncedByUser removes the user's already-pushed entries, typically as
// part of the sign-out purge. Pending rows stay.
func (r *SQLiteRepository) DeleteSyncedByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE user_id = ? AND sync_status = ?`,
		userID, string(models.SyncStatusSynced))
	if err != nil {
		return fmt.Errorf("failed to delete synced entries: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.JournalEntry, error) {
	var (
		e          models.JournalEntry
		path       string
		mood       sql.NullInt64
		insightsJS string
		tagsJS     string
		status     string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.EntryDate, &path, &e.Title, &e.Content, &mood,
		&e.AISummary, &e.AIReflection, &insightsJS, &e.VoiceNoteRef, &e.VoiceTranscript,
		&tagsJS, &e.IsPrivate, &e.CreatedAt, &e.UpdatedAt, &status)
	if err != nil {
		return nil, err
	}

	e.Path = models.Path(path)
	e.SyncStatus = models.SyncStatus(status)
	if mood.Valid {
		v := int(mood.Int64)
		e.Mood = &v
	}
	if err := json.Unmarshal([]byte(insightsJS), &e.AIInsights); err != nil {
		return nil, fmt.Errorf("failed to decode insights: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJS), &e.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return &e, nil
}

// packLists serializes the tags and insights lists to JSON text columns.
// Nil slices are stored as empty arrays so scans round-trip cleanly.
func packLists(e *models.JournalEntry) (tags string, insights string, err error) {
	t := e.Tags
	if t == nil {
		t = []string{}
	}
	i := e.AIInsights
	if i == nil {
		i = []string{}
	}
	tb, err := json.Marshal(t)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tags: %w", err)
	}
	ib, err := json.Marshal(i)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode insights: %w", err)
	}
	return string(tb), string(ib), nil
}

func moodArg(m *int) any {
	if m == nil {
		return nil
	}
	return *m
}

func oneRowAffected(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}
