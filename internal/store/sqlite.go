// Package store persists nesting run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	source        TEXT NOT NULL DEFAULT '',
	fabric        TEXT NOT NULL DEFAULT '',
	sheet_width   REAL NOT NULL DEFAULT 0.0,
	sheets        INTEGER NOT NULL DEFAULT 0,
	placed        INTEGER NOT NULL DEFAULT 0,
	unplaced      INTEGER NOT NULL DEFAULT 0,
	total_length  REAL NOT NULL DEFAULT 0.0,
	efficiency    REAL NOT NULL DEFAULT 0.0,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL DEFAULT 'completed',
	settings_json TEXT NOT NULL DEFAULT '{}',
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS placements (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	sheet_index INTEGER NOT NULL,
	seq_no      INTEGER NOT NULL,
	piece_id    TEXT NOT NULL DEFAULT '',
	label       TEXT NOT NULL DEFAULT '',
	angle       REAL NOT NULL DEFAULT 0.0,
	mirrored    INTEGER NOT NULL DEFAULT 0,
	tx_a        REAL NOT NULL,
	tx_b        REAL NOT NULL,
	tx_c        REAL NOT NULL,
	tx_d        REAL NOT NULL,
	tx_e        REAL NOT NULL,
	tx_f        REAL NOT NULL,
	UNIQUE(run_id, sheet_index, seq_no)
);
CREATE INDEX IF NOT EXISTS idx_placements_run ON placements(run_id, sheet_index, seq_no);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}
