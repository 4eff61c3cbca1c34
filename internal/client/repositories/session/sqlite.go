// Package session stores the serialized auth session in the local
// metadata key-value table.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/dbx"
)

const sessionKey = "auth_session"

// SQLiteRepository implements Repository on top of the metadata table.
type SQLiteRepository struct {
	db dbx.DBTX

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Load reads and decodes the stored session. Corrupt payloads and expired
// sessions both resolve to nil without error, so callers fall through to
// the signed-out state.
func (r *SQLiteRepository) Load(ctx context.Context) (*models.AuthSession, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = ?`, sessionKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s models.AuthSession
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, nil
	}
	if !s.Valid(r.now()) {
		return nil, nil
	}
	return &s, nil
}

// Save upserts the serialized session.
func (r *SQLiteRepository) Save(ctx context.Context, s *models.AuthSession) error {
	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, sessionKey, value)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear deletes the stored session. Idempotent.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, sessionKey)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
