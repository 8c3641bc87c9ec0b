package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Projects: one lazily-created row per (user, blueprint)
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    blueprint_id TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, blueprint_id)
);
CREATE INDEX IF NOT EXISTS idx_projects_user_active ON projects(user_id, active);

-- Segment progress: one row per touched segment
CREATE TABLE IF NOT EXISTS segment_progress (
    project_id TEXT NOT NULL,
    segment_key TEXT NOT NULL,
    points_applied INTEGER NOT NULL DEFAULT 0 CHECK(points_applied >= 0),
    completed_at TIMESTAMP,
    PRIMARY KEY (project_id, segment_key),
    FOREIGN KEY (project_id) REFERENCES projects(id)
);

-- Append-only event log. The unique dedupe key is the idempotency
-- primitive for repairs and retried allocations.
CREATE TABLE IF NOT EXISTS ledger_events (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    delta INTEGER NOT NULL,
    source_type TEXT NOT NULL,
    source_id TEXT,
    dedupe_key TEXT UNIQUE,
    breakdown TEXT NOT NULL,
    note TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
CREATE INDEX IF NOT EXISTS idx_ledger_events_user ON ledger_events(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_ledger_events_project ON ledger_events(project_id);

-- Attack records. The unique dedupe key guards the whole attack
-- transaction against duplicate triggers.
CREATE TABLE IF NOT EXISTS attacks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    trigger_type TEXT NOT NULL CHECK(trigger_type IN ('usage_violation', 'truth_mismatch', 'streak_break')),
    target_segment TEXT NOT NULL,
    damage_applied INTEGER NOT NULL,
    severity INTEGER NOT NULL,
    consecutive_days INTEGER NOT NULL,
    dedupe_key TEXT NOT NULL UNIQUE,
    description TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
CREATE INDEX IF NOT EXISTS idx_attacks_user ON attacks(user_id, created_at);

-- Daily trigger facts, owned by the upstream evaluators
CREATE TABLE IF NOT EXISTS usage_violations (
    user_id TEXT NOT NULL,
    day TEXT NOT NULL,
    overage_min INTEGER NOT NULL,
    daily_limit_min INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS truth_mismatches (
    user_id TEXT NOT NULL,
    day TEXT NOT NULL,
    reported_min INTEGER NOT NULL,
    verified_min INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS truth_checks (
    user_id TEXT NOT NULL,
    day TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('match', 'mismatch', 'pending')),
    PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS streak_history (
    user_id TEXT NOT NULL,
    day TEXT NOT NULL,
    broken INTEGER NOT NULL DEFAULT 0,
    under_limit INTEGER NOT NULL DEFAULT 1,
    violation_count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS user_settings (
    user_id TEXT PRIMARY KEY,
    iphone_verification INTEGER NOT NULL DEFAULT 0
);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    description TEXT
);
CREATE INDEX IF NOT EXISTS idx_api_keys_user ON api_keys(user_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
