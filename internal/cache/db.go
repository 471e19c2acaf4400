// Package cache persists thread-search results and recently watched
// threads in SQLite. Comments themselves are never cached.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite cache database.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the SQLite cache database and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS thread_lists (
			query_key TEXT PRIMARY KEY,
			threads TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS recent_threads (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			permalink TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			opened_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recent_opened ON recent_threads(opened_at)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
