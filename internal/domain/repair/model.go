package repair

// RepairPoints is the fixed number of points restored per perfect day.
const RepairPoints = 50

// WindowDays is the trailing window examined by an auto-repair pass.
const WindowDays = 7

// Skip reasons. Expected outcomes, never errors.
const (
	ReasonNotPerfect = "not_perfect"
	ReasonNoProject  = "no_project"
	ReasonNoDeficit  = "no_deficit"
)

// Result is the outcome for one day of an auto-repair pass.
type Result struct {
	Day            string `json:"day"`
	Applied        bool   `json:"applied"`
	Deduped        bool   `json:"deduped"`
	Reason         string `json:"reason,omitempty"`
	SegmentKey     string `json:"segment_key,omitempty"`
	PointsRestored int    `json:"points_restored"`
	Completed      bool   `json:"completed"`
}
