package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/repository"
)

// EventRepository implements ledger.EventRepository for SQLite
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns the most recent events for a user, newest first
func (r *EventRepository) List(ctx context.Context, userID string, limit int) ([]ledger.Event, error) {
	query := `
		SELECT id, project_id, user_id, delta, source_type, source_id, dedupe_key, breakdown, note, created_at
		FROM ledger_events
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []ledger.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

// DedupeKeyExists reports whether an event with the given dedupe key has
// already been recorded. The unique constraint remains the authority; this
// only makes repeat calls cheap.
func (r *EventRepository) DedupeKeyExists(ctx context.Context, key string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_events WHERE dedupe_key = ?`, key).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check dedupe key: %w", err)
	}
	return count > 0, nil
}

// insertEventTx appends one event inside the caller's transaction. A
// dedupe-key collision maps to repository.ErrDuplicate so callers can
// recognize the operation as already completed.
func insertEventTx(ctx context.Context, tx *sql.Tx, ev *ledger.Event) error {
	breakdown, err := json.Marshal(ev.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	query := `
		INSERT INTO ledger_events (id, project_id, user_id, delta, source_type, source_id, dedupe_key, breakdown, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		ev.ID,
		ev.ProjectID,
		ev.UserID,
		ev.Delta,
		ev.SourceType,
		ev.SourceID,
		ev.DedupeKey,
		string(breakdown),
		ev.Note,
		ev.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("project %s: %w", ev.ProjectID, repository.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*ledger.Event, error) {
	var ev ledger.Event
	var sourceID, dedupeKey, note sql.NullString
	var breakdown string
	if err := row.Scan(
		&ev.ID,
		&ev.ProjectID,
		&ev.UserID,
		&ev.Delta,
		&ev.SourceType,
		&sourceID,
		&dedupeKey,
		&breakdown,
		&note,
		&ev.CreatedAt,
	); err != nil {
		return nil, err
	}
	if sourceID.Valid {
		ev.SourceID = &sourceID.String
	}
	if dedupeKey.Valid {
		ev.DedupeKey = &dedupeKey.String
	}
	ev.Note = note.String
	if err := json.Unmarshal([]byte(breakdown), &ev.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
	}
	return &ev, nil
}
