package facts

import (
	"context"
	"fmt"
)

// LookbackDays bounds the consecutive-day scan.
const LookbackDays = 30

// ConsecutiveDays counts the unbroken run of days matching the trigger,
// scanning backward from the given day. The triggering day itself always
// counts even before its own fact record is persisted, so the minimum is
// 1. The scan stops at the first day with no matching fact or at the
// lookback bound.
func ConsecutiveDays(ctx context.Context, repo Repository, userID, day string, trigger Trigger) (int, error) {
	t, err := ParseDay(day)
	if err != nil {
		return 0, err
	}

	count := 1
	for count < LookbackDays {
		t = t.AddDate(0, 0, -1)
		matched, err := hasTriggerFact(ctx, repo, userID, FormatDay(t), trigger)
		if err != nil {
			return 0, fmt.Errorf("scanning %s: %w", FormatDay(t), err)
		}
		if !matched {
			break
		}
		count++
	}
	return count, nil
}

func hasTriggerFact(ctx context.Context, repo Repository, userID, day string, trigger Trigger) (bool, error) {
	switch trigger {
	case TriggerUsageViolation:
		return repo.HasUsageViolation(ctx, userID, day)
	case TriggerTruthMismatch:
		return repo.HasTruthMismatch(ctx, userID, day)
	case TriggerStreakBreak:
		return repo.HasStreakBreak(ctx, userID, day)
	default:
		return false, fmt.Errorf("unknown trigger %q", trigger)
	}
}
