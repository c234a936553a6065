// Package sqlite implements the storage gateway on a local SQLite file using
// the pure-Go modernc.org/sqlite driver, so the service needs no cgo and no
// external database.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	_ "modernc.org/sqlite"

	"github.com/sneakstore/storefront/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS storefront_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`

var _ storage.Gateway = (*Gateway)(nil)

// Gateway is a storage.Gateway backed by a single-table SQLite database.
type Gateway struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// key-value table exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Gateway, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// The driver is single-writer; serialize access at the pool level
	// instead of surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create kv table")
	}
	return &Gateway{db: db}, nil
}

// Get returns the value stored under key, reporting ok=false when absent.
func (g *Gateway) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := g.db.QueryRowContext(ctx,
		`SELECT value FROM storefront_kv WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get %q", key)
	}
	return value, true, nil
}

// Set stores value under key, overwriting any previous value.
func (g *Gateway) Set(ctx context.Context, key, value string) error {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO storefront_kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (g *Gateway) Delete(ctx context.Context, key string) error {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM storefront_kv WHERE key = ?`, key); err != nil {
		return errors.Wrapf(err, "delete %q", key)
	}
	return nil
}

// Ping verifies the database file is reachable. Used by readiness checks.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (g *Gateway) Close() error {
	return g.db.Close()
}
