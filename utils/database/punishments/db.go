package punishments

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the punishment database and ensures all tables exist.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS punishment_types (
	    type_id INTEGER PRIMARY KEY,
	    name TEXT NOT NULL UNIQUE,
	    stackable INTEGER NOT NULL DEFAULT 0,
	    stack_limit INTEGER NOT NULL DEFAULT 1,
	    non_concurrent_with TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS punishment_tiers (
	    tier_id INTEGER PRIMARY KEY AUTOINCREMENT,
	    type_id INTEGER NOT NULL,
	    tier_number INTEGER NOT NULL,
	    length_days INTEGER,
	    category TEXT,
	    UNIQUE(type_id, tier_number)
	);

	CREATE TABLE IF NOT EXISTS punishments (
	    record_id INTEGER PRIMARY KEY AUTOINCREMENT,
	    subject_id INTEGER NOT NULL,
	    type_name TEXT NOT NULL,
	    type_id INTEGER NOT NULL,
	    tier_number INTEGER,
	    category TEXT,
	    tier_id INTEGER,
	    reason TEXT NOT NULL DEFAULT 'No reason provided',
	    evidence TEXT NOT NULL DEFAULT 'No evidence provided',
	    issued_by TEXT NOT NULL DEFAULT '',
	    issued_at INTEGER NOT NULL,
	    start_at INTEGER NOT NULL,
	    end_at INTEGER,
	    active INTEGER NOT NULL DEFAULT 1,
	    deactivated_at INTEGER,
	    deactivated_by TEXT,
	    deactivation_reason TEXT,
	    last_updated_at INTEGER,
	    last_updated_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_punishments_subject ON punishments(subject_id);
	CREATE INDEX IF NOT EXISTS idx_punishments_active ON punishments(active, end_at);

	CREATE TABLE IF NOT EXISTS individuals (
	    subject_id INTEGER PRIMARY KEY,
	    record_id INTEGER,
	    type_name TEXT,
	    type_id INTEGER,
	    tier_number INTEGER,
	    category TEXT,
	    tier_id INTEGER,
	    reason TEXT,
	    evidence TEXT,
	    start_at INTEGER,
	    end_at INTEGER,
	    active INTEGER NOT NULL DEFAULT 0,
	    punishment_history TEXT NOT NULL DEFAULT '',
	    updated_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS guild_settings (
	    guild_id TEXT PRIMARY KEY,
	    notification_channel_id TEXT NOT NULL DEFAULT '',
	    notifications_enabled INTEGER NOT NULL DEFAULT 0
	);`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create punishment tables: %w", err)
	}

	// Seed the record-id sequence so human-facing IDs start at six digits.
	// AUTOINCREMENT guarantees IDs are monotonic and never reused.
	if _, err := db.Exec(
		`INSERT INTO sqlite_sequence (name, seq) SELECT 'punishments', 99999
		 WHERE NOT EXISTS (SELECT 1 FROM sqlite_sequence WHERE name = 'punishments')`); err != nil {
		return nil, fmt.Errorf("failed to seed punishment id sequence: %w", err)
	}

	return db, nil
}
