package attack

import (
	"time"

	"github.com/galleonship/galleon/internal/domain/facts"
)

// Record is one successfully-applied attack. Write-once; its unique
// dedupe key is the idempotency guard for the whole attack transaction.
type Record struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	ProjectID       string        `json:"project_id"`
	Trigger         facts.Trigger `json:"trigger"`
	TargetSegment   string        `json:"target_segment"`
	DamageApplied   int           `json:"damage_applied"`
	Severity        int           `json:"severity"`
	ConsecutiveDays int           `json:"consecutive_days"`
	DedupeKey       string        `json:"dedupe_key"`
	Description     string        `json:"description,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Not-applied reasons. These are expected outcomes, never errors.
const (
	ReasonNoProject  = "no_project"
	ReasonNoProgress = "no_progress"
	ReasonNoPoints   = "no_points"
)

// Result reports the outcome of an attack trigger.
type Result struct {
	Applied         bool   `json:"applied"`
	Deduped         bool   `json:"deduped"`
	Reason          string `json:"reason,omitempty"`
	Trigger         string `json:"trigger"`
	TargetSegment   string `json:"target_segment,omitempty"`
	DamageRequested int    `json:"damage_requested"`
	DamageApplied   int    `json:"damage_applied"`
	Severity        int    `json:"severity,omitempty"`
	ConsecutiveDays int    `json:"consecutive_days"`
}
