// Package store provides sqlite-backed implementations of the pattern,
// preference, request and history stores. Rows carry the serialized record as
// JSON next to the key and ordering columns so the schema stays stable as the
// record types grow.
package store

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle shared by the concrete stores.
type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema. Use
// ":memory:" for an ephemeral database in tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Serialized writers keep the read-modify-write upserts atomic.
	db.SetMaxOpenConns(1)
	schema := `
CREATE TABLE IF NOT EXISTS meeting_patterns (
    customer_id    TEXT NOT NULL,
    stakeholder_id TEXT NOT NULL DEFAULT '',
    calculated_at  INTEGER NOT NULL,
    payload        TEXT NOT NULL,
    PRIMARY KEY (customer_id, stakeholder_id)
);
CREATE TABLE IF NOT EXISTS stakeholder_preferences (
    stakeholder_id TEXT PRIMARY KEY,
    source         TEXT NOT NULL,
    confidence     REAL NOT NULL,
    payload        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meeting_requests (
    id         TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL,
    status     TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    payload    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meeting_history (
    customer_id    TEXT NOT NULL,
    stakeholder_id TEXT NOT NULL DEFAULT '',
    scheduled_at   INTEGER NOT NULL,
    payload        TEXT NOT NULL,
    PRIMARY KEY (customer_id, stakeholder_id, scheduled_at)
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error { return d.db.Close() }

// Patterns returns the pattern store backed by this database.
func (d *DB) Patterns() *PatternStore { return &PatternStore{db: d.db} }

// Preferences returns the preference store backed by this database.
func (d *DB) Preferences() *PreferenceStore { return &PreferenceStore{db: d.db} }

// Requests returns the request store backed by this database.
func (d *DB) Requests() *RequestStore { return &RequestStore{db: d.db} }

// History returns the history mirror backed by this database.
func (d *DB) History() *HistoryStore { return &HistoryStore{db: d.db} }
