package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return db
}

func TestSaveAndLoad(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := &models.AuthSession{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour).UTC(),
		UserID:       "u1",
		Email:        "u@example.com",
	}
	require.NoError(t, r.Save(ctx, s))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "at", got.AccessToken)
	assert.Equal(t, "u1", got.UserID)
}

func TestLoad_Absent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	got, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoad_ExpiredTreatedAsAbsent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := &models.AuthSession{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(-time.Minute).UTC(),
		UserID:       "u1",
	}
	require.NoError(t, r.Save(ctx, s))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoad_CorruptTreatedAsAbsent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO metadata (key, value) VALUES (?, ?)`, sessionKey, []byte("{not json"))
	require.NoError(t, err)

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSave_Overwrites(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour).UTC()
	require.NoError(t, r.Save(ctx, &models.AuthSession{AccessToken: "old", ExpiresAt: exp}))
	require.NoError(t, r.Save(ctx, &models.AuthSession{AccessToken: "new", ExpiresAt: exp}))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.AccessToken)
}

func TestClear_Idempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Clear(ctx))

	require.NoError(t, r.Save(ctx, &models.AuthSession{
		AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, r.Clear(ctx))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
