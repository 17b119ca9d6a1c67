// Package sqlite is the embedded default store, backed by the pure-Go
// modernc.org/sqlite driver. Timestamps are stored as RFC3339Nano text in
// UTC; the one-ongoing-incident-per-target rule is enforced with a partial
// unique index so the invariant holds even across processes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"statuspulse/internal/repo"
)

var _ repo.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// New opens (or creates) the database file and brings the schema up to date.
func New(ctx context.Context, dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS targets (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	name                 TEXT NOT NULL,
	url                  TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	method               TEXT NOT NULL DEFAULT 'GET',
	check_interval_secs  INTEGER NOT NULL DEFAULT 300,
	timeout_secs         INTEGER NOT NULL DEFAULT 10,
	expected_status_code INTEGER NOT NULL DEFAULT 200,
	active               INTEGER NOT NULL DEFAULT 1,
	created_at           TEXT NOT NULL,
	updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS probe_results (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id        INTEGER NOT NULL,
	status_code      INTEGER,
	response_time_ms INTEGER,
	success          INTEGER NOT NULL,
	error_message    TEXT,
	checked_at       TEXT NOT NULL,
	FOREIGN KEY(target_id) REFERENCES targets(id)
);
CREATE INDEX IF NOT EXISTS idx_probe_results_target_checked
	ON probe_results (target_id, checked_at DESC);

CREATE TABLE IF NOT EXISTS incidents (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id  INTEGER NOT NULL,
	start_time TEXT NOT NULL,
	end_time   TEXT,
	status     TEXT NOT NULL DEFAULT 'ongoing',
	reason     TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY(target_id) REFERENCES targets(id)
);
CREATE INDEX IF NOT EXISTS idx_incidents_target_start
	ON incidents (target_id, start_time DESC);
CREATE UNIQUE INDEX IF NOT EXISTS idx_incidents_one_ongoing
	ON incidents (target_id) WHERE status = 'ongoing';

CREATE TABLE IF NOT EXISTS uptime_history (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id         INTEGER NOT NULL,
	period            TEXT NOT NULL,
	bucket_ts         TEXT NOT NULL,
	total_checks      INTEGER NOT NULL DEFAULT 0,
	successful_checks INTEGER NOT NULL DEFAULT 0,
	uptime_percentage REAL NOT NULL DEFAULT 0,
	avg_response_ms   INTEGER,
	created_at        TEXT NOT NULL,
	FOREIGN KEY(target_id) REFERENCES targets(id),
	UNIQUE(target_id, period, bucket_ts)
);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// isUniqueViolation recognizes the driver's constraint failure so adapters
// can translate it into repo.ErrConflict.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
