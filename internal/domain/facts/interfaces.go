package facts

import "context"

// Repository provides persistence for daily trigger facts. Reads are
// consumed by the attack and repair engines; writes belong to the
// upstream evaluators' ingestion path. All fact writes are idempotent
// upserts keyed (user, day).
type Repository interface {
	HasUsageViolation(ctx context.Context, userID, day string) (bool, error)
	HasTruthMismatch(ctx context.Context, userID, day string) (bool, error)
	HasStreakBreak(ctx context.Context, userID, day string) (bool, error)
	GetStreakDay(ctx context.Context, userID, day string) (*StreakDay, error)
	GetTruthCheck(ctx context.Context, userID, day string) (*TruthCheck, error)
	VerificationEnabled(ctx context.Context, userID string) (bool, error)

	RecordUsageViolation(ctx context.Context, v *UsageViolation) error
	RecordTruthMismatch(ctx context.Context, m *TruthMismatch) error
	RecordStreakDay(ctx context.Context, d *StreakDay) error
	RecordTruthCheck(ctx context.Context, c *TruthCheck) error
	SetVerification(ctx context.Context, userID string, enabled bool) error
}
