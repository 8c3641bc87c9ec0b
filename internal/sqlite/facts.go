package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/repository"
)

// FactsRepository implements facts.Repository for SQLite. Fact writes
// are idempotent upserts keyed (user, day); re-recording a day replaces
// its values instead of failing.
type FactsRepository struct {
	db *DB
}

// NewFactsRepository creates a new FactsRepository
func NewFactsRepository(db *DB) *FactsRepository {
	return &FactsRepository{db: db}
}

func (r *FactsRepository) hasRow(ctx context.Context, query, userID, day string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, day).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check fact: %w", err)
	}
	return count > 0, nil
}

// HasUsageViolation reports whether a usage-violation fact exists for the day
func (r *FactsRepository) HasUsageViolation(ctx context.Context, userID, day string) (bool, error) {
	return r.hasRow(ctx, `SELECT COUNT(*) FROM usage_violations WHERE user_id = ? AND day = ?`, userID, day)
}

// HasTruthMismatch reports whether a truth-mismatch fact exists for the day
func (r *FactsRepository) HasTruthMismatch(ctx context.Context, userID, day string) (bool, error) {
	return r.hasRow(ctx, `SELECT COUNT(*) FROM truth_mismatches WHERE user_id = ? AND day = ?`, userID, day)
}

// HasStreakBreak reports whether the day's streak history marks a break
func (r *FactsRepository) HasStreakBreak(ctx context.Context, userID, day string) (bool, error) {
	return r.hasRow(ctx, `SELECT COUNT(*) FROM streak_history WHERE user_id = ? AND day = ? AND broken = 1`, userID, day)
}

// GetStreakDay retrieves one day of streak history
func (r *FactsRepository) GetStreakDay(ctx context.Context, userID, day string) (*facts.StreakDay, error) {
	query := `
		SELECT user_id, day, broken, under_limit, violation_count
		FROM streak_history
		WHERE user_id = ? AND day = ?
	`

	var sd facts.StreakDay
	var broken, underLimit int
	err := r.db.QueryRowContext(ctx, query, userID, day).Scan(
		&sd.UserID, &sd.Day, &broken, &underLimit, &sd.ViolationCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak day: %w", err)
	}
	sd.Broken = broken != 0
	sd.UnderLimit = underLimit != 0
	return &sd, nil
}

// GetTruthCheck retrieves the day's truth-check result
func (r *FactsRepository) GetTruthCheck(ctx context.Context, userID, day string) (*facts.TruthCheck, error) {
	query := `SELECT user_id, day, status FROM truth_checks WHERE user_id = ? AND day = ?`

	var tc facts.TruthCheck
	var status string
	err := r.db.QueryRowContext(ctx, query, userID, day).Scan(&tc.UserID, &tc.Day, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get truth check: %w", err)
	}
	tc.Status = facts.CheckStatus(status)
	return &tc, nil
}

// VerificationEnabled reports the user's iPhone-verification flag.
// Users with no settings row default to disabled.
func (r *FactsRepository) VerificationEnabled(ctx context.Context, userID string) (bool, error) {
	var enabled int
	err := r.db.QueryRowContext(ctx,
		`SELECT iphone_verification FROM user_settings WHERE user_id = ?`, userID).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get verification flag: %w", err)
	}
	return enabled != 0, nil
}

// RecordUsageViolation upserts a usage-violation fact
func (r *FactsRepository) RecordUsageViolation(ctx context.Context, v *facts.UsageViolation) error {
	query := `
		INSERT INTO usage_violations (user_id, day, overage_min, daily_limit_min, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			overage_min = excluded.overage_min,
			daily_limit_min = excluded.daily_limit_min
	`
	if _, err := r.db.ExecContext(ctx, query, v.UserID, v.Day, v.OverageMin, v.DailyLimitMin, v.CreatedAt); err != nil {
		return fmt.Errorf("failed to record usage violation: %w", err)
	}
	return nil
}

// RecordTruthMismatch upserts a truth-mismatch fact
func (r *FactsRepository) RecordTruthMismatch(ctx context.Context, m *facts.TruthMismatch) error {
	query := `
		INSERT INTO truth_mismatches (user_id, day, reported_min, verified_min, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			reported_min = excluded.reported_min,
			verified_min = excluded.verified_min
	`
	if _, err := r.db.ExecContext(ctx, query, m.UserID, m.Day, m.ReportedMin, m.VerifiedMin, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to record truth mismatch: %w", err)
	}
	return nil
}

// RecordStreakDay upserts one day of streak history
func (r *FactsRepository) RecordStreakDay(ctx context.Context, d *facts.StreakDay) error {
	query := `
		INSERT INTO streak_history (user_id, day, broken, under_limit, violation_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			broken = excluded.broken,
			under_limit = excluded.under_limit,
			violation_count = excluded.violation_count
	`
	if _, err := r.db.ExecContext(ctx, query, d.UserID, d.Day, boolToInt(d.Broken), boolToInt(d.UnderLimit), d.ViolationCount); err != nil {
		return fmt.Errorf("failed to record streak day: %w", err)
	}
	return nil
}

// RecordTruthCheck upserts the day's truth-check result
func (r *FactsRepository) RecordTruthCheck(ctx context.Context, c *facts.TruthCheck) error {
	query := `
		INSERT INTO truth_checks (user_id, day, status)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET status = excluded.status
	`
	if _, err := r.db.ExecContext(ctx, query, c.UserID, c.Day, string(c.Status)); err != nil {
		return fmt.Errorf("failed to record truth check: %w", err)
	}
	return nil
}

// SetVerification upserts the user's iPhone-verification flag
func (r *FactsRepository) SetVerification(ctx context.Context, userID string, enabled bool) error {
	query := `
		INSERT INTO user_settings (user_id, iphone_verification)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET iphone_verification = excluded.iphone_verification
	`
	if _, err := r.db.ExecContext(ctx, query, userID, boolToInt(enabled)); err != nil {
		return fmt.Errorf("failed to set verification flag: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
