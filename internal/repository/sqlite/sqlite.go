// Package sqlite implements the repository interfaces on SQLite via the
// pure Go modernc.org/sqlite driver — no C toolchain, single-file
// deployments, and ":memory:" databases for tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — needed for a
	// web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, logger: logger}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Call on shutdown to flush the WAL and
// release the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the four tables. CREATE ... IF NOT EXISTS keeps this
// idempotent, so it runs unconditionally at startup.
//
// Schema decisions worth noting:
//
//   - users.fid is UNIQUE. The reconciler's check-then-act is only
//     race-safe because the store rejects a second row for the same FID.
//   - places.latitude/longitude are stored as TEXT. The data predates
//     strict typing (imported rows contain junk like "n/a"), so numeric
//     coercion happens at read time and bad rows are dropped from
//     geospatial results instead of failing the query.
//   - list_places has NO uniqueness on (list_id, place_id) and no foreign
//     keys to places: memberships are weak back-references, duplicates
//     are representable, and orphans are cleaned up administratively.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			fid          TEXT NOT NULL UNIQUE,
			username     TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			pfp_url      TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS places (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			address     TEXT NOT NULL DEFAULT '',
			latitude    TEXT NOT NULL DEFAULT '',
			longitude   TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			website_url TEXT NOT NULL DEFAULT '',
			image_url   TEXT NOT NULL DEFAULT '',
			created_by  TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_places_created_by ON places(created_by);
		CREATE INDEX IF NOT EXISTS idx_places_name ON places(name COLLATE NOCASE);
	`)
	if err != nil {
		return fmt.Errorf("creating places table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS lists (
			id              TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			visibility      TEXT NOT NULL DEFAULT 'private'
			                CHECK (visibility IN ('private','public','community')),
			owner_id        TEXT NOT NULL,
			cover_image_url TEXT NOT NULL DEFAULT '',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_lists_owner_id ON lists(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating lists table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS list_places (
			id        TEXT PRIMARY KEY,
			list_id   TEXT NOT NULL,
			place_id  TEXT NOT NULL,
			added_by  TEXT NOT NULL DEFAULT '',
			note      TEXT NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			added_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_list_places_list_id ON list_places(list_id);
		CREATE INDEX IF NOT EXISTS idx_list_places_place_id ON list_places(place_id);
	`)
	if err != nil {
		return fmt.Errorf("creating list_places table: %w", err)
	}

	return nil
}
