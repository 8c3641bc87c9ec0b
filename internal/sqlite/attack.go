package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/galleonship/galleon/internal/domain/attack"
	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/repository"
)

// AttackRepository implements attack.Repository for SQLite
type AttackRepository struct {
	db *DB
}

// NewAttackRepository creates a new AttackRepository
func NewAttackRepository(db *DB) *AttackRepository {
	return &AttackRepository{db: db}
}

// Apply writes one attack atomically: the attack record (whose unique
// dedupe key is checked first, so a duplicate trigger aborts before any
// state changes), the damaged segment row, and the negative ledger event.
func (r *AttackRepository) Apply(ctx context.Context, ev *ledger.Event, rec *attack.Record) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO attacks (id, user_id, project_id, trigger_type, target_segment, damage_applied, severity, consecutive_days, dedupe_key, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, insert,
			rec.ID,
			rec.UserID,
			rec.ProjectID,
			string(rec.Trigger),
			rec.TargetSegment,
			rec.DamageApplied,
			rec.Severity,
			rec.ConsecutiveDays,
			rec.DedupeKey,
			rec.Description,
			rec.CreatedAt,
		)
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("failed to insert attack: %w", err)
		}

		if err := insertEventTx(ctx, tx, ev); err != nil {
			return err
		}
		return applyBreakdownTx(ctx, tx, ev)
	})
}

// DedupeKeyExists reports whether an attack with the given dedupe key has
// already been recorded. The unique constraint remains the authority; this
// only makes repeat calls cheap.
func (r *AttackRepository) DedupeKeyExists(ctx context.Context, key string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attacks WHERE dedupe_key = ?`, key).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check dedupe key: %w", err)
	}
	return count > 0, nil
}

// List returns the most recent attacks for a user, newest first
func (r *AttackRepository) List(ctx context.Context, userID string, limit int) ([]attack.Record, error) {
	query := `
		SELECT id, user_id, project_id, trigger_type, target_segment, damage_applied, severity, consecutive_days, dedupe_key, description, created_at
		FROM attacks
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attacks: %w", err)
	}
	defer rows.Close()

	var records []attack.Record
	for rows.Next() {
		var rec attack.Record
		var trigger string
		var description sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.ProjectID,
			&trigger,
			&rec.TargetSegment,
			&rec.DamageApplied,
			&rec.Severity,
			&rec.ConsecutiveDays,
			&rec.DedupeKey,
			&description,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attack: %w", err)
		}
		rec.Trigger = facts.Trigger(trigger)
		rec.Description = description.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attack rows: %w", err)
	}
	return records, nil
}
