package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/repository"
)

// ProgressRepository implements ledger.ProgressRepository for SQLite.
// Every Apply method runs its whole mutation in one transaction: segment
// rows plus exactly one ledger event commit together or not at all.
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// ListSegments returns every touched segment of a project
func (r *ProgressRepository) ListSegments(ctx context.Context, projectID string) ([]ledger.SegmentProgress, error) {
	query := `
		SELECT project_id, segment_key, points_applied, completed_at
		FROM segment_progress
		WHERE project_id = ?
		ORDER BY segment_key
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	defer rows.Close()

	var segments []ledger.SegmentProgress
	for rows.Next() {
		var seg ledger.SegmentProgress
		var completedAt sql.NullTime
		if err := rows.Scan(&seg.ProjectID, &seg.SegmentKey, &seg.PointsApplied, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			seg.CompletedAt = &t
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment rows: %w", err)
	}
	return segments, nil
}

// ApplyAllocation writes an allocation: the event (whose optional dedupe
// key rejects retries) plus every touched segment row.
func (r *ProgressRepository) ApplyAllocation(ctx context.Context, ev *ledger.Event) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertEventTx(ctx, tx, ev); err != nil {
			return err
		}
		return applyBreakdownTx(ctx, tx, ev)
	})
}

// ApplyRepair writes a repair: the event carrying the mandatory repair
// dedupe key plus the restored segment row. A duplicate dedupe key aborts
// the transaction with repository.ErrDuplicate before any row changes.
func (r *ProgressRepository) ApplyRepair(ctx context.Context, ev *ledger.Event) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertEventTx(ctx, tx, ev); err != nil {
			return err
		}
		return applyBreakdownTx(ctx, tx, ev)
	})
}

// applyBreakdownTx applies each per-segment line of an event to the
// segment_progress table with an optimistic concurrency guard: the update
// only lands if the row still holds the total the breakdown was computed
// from. A stale snapshot aborts the transaction with ErrConflict.
func applyBreakdownTx(ctx context.Context, tx *sql.Tx, ev *ledger.Event) error {
	for _, line := range ev.Breakdown {
		prior := line.ResultingTotal - line.AppliedDelta
		var completedAt *time.Time
		if line.Completed {
			t := ev.CreatedAt
			completedAt = &t
		}

		update := `
			UPDATE segment_progress
			SET points_applied = ?, completed_at = ?
			WHERE project_id = ? AND segment_key = ? AND points_applied = ?
		`
		result, err := tx.ExecContext(ctx, update,
			line.ResultingTotal, completedAt, ev.ProjectID, line.SegmentKey, prior)
		if err != nil {
			return fmt.Errorf("failed to update segment %s: %w", line.SegmentKey, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected > 0 {
			continue
		}

		if prior != 0 {
			return fmt.Errorf("segment %s: %w", line.SegmentKey, repository.ErrConflict)
		}

		insert := `
			INSERT INTO segment_progress (project_id, segment_key, points_applied, completed_at)
			VALUES (?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, insert,
			ev.ProjectID, line.SegmentKey, line.ResultingTotal, completedAt); err != nil {
			if isUniqueViolation(err) {
				// Row appeared with a non-zero total after our read.
				return fmt.Errorf("segment %s: %w", line.SegmentKey, repository.ErrConflict)
			}
			return fmt.Errorf("failed to insert segment %s: %w", line.SegmentKey, err)
		}
	}
	return nil
}
