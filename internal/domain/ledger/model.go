package ledger

import "time"

// Project pairs a user with a blueprint. Created lazily on the first
// mutation that touches the user's ledger.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BlueprintID string    `json:"blueprint_id"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// SegmentProgress tracks points applied to one segment of a project.
// Invariants: 0 <= PointsApplied <= cost, and CompletedAt is present
// iff PointsApplied >= cost.
type SegmentProgress struct {
	ProjectID     string     `json:"project_id"`
	SegmentKey    string     `json:"segment_key"`
	PointsApplied int        `json:"points_applied"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// SegmentAllocation is one per-segment line of a ledger event breakdown.
type SegmentAllocation struct {
	SegmentKey     string `json:"segment_key"`
	AppliedDelta   int    `json:"applied_delta"`
	ResultingTotal int    `json:"resulting_total"`
	Completed      bool   `json:"completed"`
	Cost           int    `json:"cost"`
}

// Event is one immutable entry in the append-only ledger.
type Event struct {
	ID         string              `json:"id"`
	ProjectID  string              `json:"project_id"`
	UserID     string              `json:"user_id"`
	Delta      int                 `json:"delta"`
	SourceType string              `json:"source_type"`
	SourceID   *string             `json:"source_id,omitempty"`
	DedupeKey  *string             `json:"dedupe_key,omitempty"`
	Breakdown  []SegmentAllocation `json:"breakdown"`
	Note       string              `json:"note,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Built-in source types. Allocation events may instead carry a
// caller-supplied source type such as "focus_session" or "task".
const (
	SourceAllocation = "allocation"
	SourceAttack     = "attack"
	SourceRepair     = "repair"
)

// AllocationResult reports what an applyPoints call actually did.
type AllocationResult struct {
	Applied      []SegmentAllocation `json:"applied"`
	TotalApplied int                 `json:"total_applied"`
	Remainder    int                 `json:"remainder"`
	Deduped      bool                `json:"deduped"`
	EventID      string              `json:"event_id,omitempty"`
}

// SegmentStatus is one segment's row in a status view.
type SegmentStatus struct {
	Key           string     `json:"key"`
	Label         string     `json:"label"`
	Phase         string     `json:"phase"`
	Cost          int        `json:"cost"`
	PointsApplied int        `json:"points_applied"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Status is the full progress view for a user's build.
type Status struct {
	BlueprintID    string          `json:"blueprint_id"`
	BlueprintName  string          `json:"blueprint_name"`
	Segments       []SegmentStatus `json:"segments"`
	TotalCost      int             `json:"total_cost"`
	TotalApplied   int             `json:"total_applied"`
	CompletionPct  float64         `json:"completion_pct"`
	CurrentSegment string          `json:"current_segment,omitempty"`
}
