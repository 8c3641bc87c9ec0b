package ledger

import "github.com/galleonship/galleon/internal/blueprint"

// Allocate distributes points across incomplete segments in ascending
// order index, filling each segment's remaining capacity before moving to
// the next. It returns the per-segment allocations actually applied and
// the unapplied remainder. Points beyond the blueprint's total remaining
// capacity are dropped, not banked.
//
// Pure function over a snapshot: the blueprint's segment order decides
// iteration, never map order.
func Allocate(bp *blueprint.Blueprint, segments []SegmentProgress, points int) ([]SegmentAllocation, int) {
	if points <= 0 {
		return nil, 0
	}

	applied := make(map[string]int, len(segments))
	for _, seg := range segments {
		applied[seg.SegmentKey] = seg.PointsApplied
	}

	var out []SegmentAllocation
	remaining := points
	for _, seg := range bp.Segments {
		if remaining == 0 {
			break
		}
		current := applied[seg.Key]
		capacity := seg.Cost - current
		if capacity <= 0 {
			continue
		}
		delta := remaining
		if delta > capacity {
			delta = capacity
		}
		total := current + delta
		out = append(out, SegmentAllocation{
			SegmentKey:     seg.Key,
			AppliedDelta:   delta,
			ResultingTotal: total,
			Completed:      total >= seg.Cost,
			Cost:           seg.Cost,
		})
		remaining -= delta
	}
	return out, remaining
}
