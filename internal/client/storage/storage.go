// Package storage opens the local SQLite database, applies embedded
// migrations, and wires up the repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obexhq/obex/internal/client/migrations"
	"github.com/obexhq/obex/internal/client/repositories/entries"
	"github.com/obexhq/obex/internal/client/repositories/session"
	"github.com/obexhq/obex/internal/dbx"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the local stores backed by one database handle.
type Repositories struct {
	Entries  entries.Repository
	Sessions session.Repository
	DB       *sql.DB
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the database at dsn, migrates it, and
// returns the repository set.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc's sqlite driver is safest with a single writer connection.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Entries:  entries.NewSQLiteRepository(db),
		Sessions: session.NewSQLiteRepository(db),
		DB:       db,
	}, nil
}

// PurgeUserData runs the sign-out cleanup: the user's already-synced entries
// and the stored session are removed in one transaction, so a crash midway
// cannot leave a cleared session next to another account's synced rows.
// Pending entries survive; their push happens on the next sign-in.
func (r *Repositories) PurgeUserData(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := entries.NewSQLiteRepository(tx).DeleteSyncedByUser(ctx, userID); err != nil {
			return err
		}
		return session.NewSQLiteRepository(tx).Clear(ctx)
	})
}

// Close releases the database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
