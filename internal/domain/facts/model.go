package facts

import "time"

// Trigger identifies the kind of rule violation behind an attack.
type Trigger string

const (
	TriggerUsageViolation Trigger = "usage_violation"
	TriggerTruthMismatch  Trigger = "truth_mismatch"
	TriggerStreakBreak    Trigger = "streak_break"
)

// IsValid reports whether the trigger is a known kind.
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerUsageViolation, TriggerTruthMismatch, TriggerStreakBreak:
		return true
	default:
		return false
	}
}

// CheckStatus is the outcome of a daily verified-usage truth check.
type CheckStatus string

const (
	CheckMatch    CheckStatus = "match"
	CheckMismatch CheckStatus = "mismatch"
	CheckPending  CheckStatus = "pending"
)

// UsageViolation records that a user exceeded their daily usage limit.
// Keyed (user, day); owned by the upstream usage evaluator.
type UsageViolation struct {
	UserID        string    `json:"user_id"`
	Day           string    `json:"day"`
	OverageMin    int       `json:"overage_min"`
	DailyLimitMin int       `json:"daily_limit_min"`
	CreatedAt     time.Time `json:"created_at"`
}

// TruthMismatch records a discrepancy between reported and verified
// usage minutes for a day.
type TruthMismatch struct {
	UserID      string    `json:"user_id"`
	Day         string    `json:"day"`
	ReportedMin int       `json:"reported_min"`
	VerifiedMin int       `json:"verified_min"`
	CreatedAt   time.Time `json:"created_at"`
}

// StreakDay is one day of streak history.
type StreakDay struct {
	UserID         string `json:"user_id"`
	Day            string `json:"day"`
	Broken         bool   `json:"broken"`
	UnderLimit     bool   `json:"under_limit"`
	ViolationCount int    `json:"violation_count"`
}

// TruthCheck is the daily verified-usage comparison result.
type TruthCheck struct {
	UserID string      `json:"user_id"`
	Day    string      `json:"day"`
	Status CheckStatus `json:"status"`
}
