package attack

import (
	"sort"

	"github.com/galleonship/galleon/internal/blueprint"
	"github.com/galleonship/galleon/internal/domain/ledger"
)

// SelectTarget picks the segment an attack damages. Precedence: the most
// recently completed segment; otherwise the partially-progressed segment
// with the lowest order index. Returns false when no segment has any
// points to lose.
//
// Pure function over a snapshot; ties on completion time fall back to
// order index so the choice never depends on input ordering.
func SelectTarget(bp *blueprint.Blueprint, segments []ledger.SegmentProgress) (ledger.SegmentProgress, bool) {
	orderOf := func(key string) int {
		if seg, ok := bp.Segment(key); ok {
			return seg.OrderIndex
		}
		return len(bp.Segments)
	}

	var completed []ledger.SegmentProgress
	for _, seg := range segments {
		if seg.CompletedAt != nil {
			completed = append(completed, seg)
		}
	}
	if len(completed) > 0 {
		sort.SliceStable(completed, func(i, j int) bool {
			ti, tj := *completed[i].CompletedAt, *completed[j].CompletedAt
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return orderOf(completed[i].SegmentKey) < orderOf(completed[j].SegmentKey)
		})
		return completed[0], true
	}

	var partial []ledger.SegmentProgress
	for _, seg := range segments {
		cost := 0
		if s, ok := bp.Segment(seg.SegmentKey); ok {
			cost = s.Cost
		}
		if seg.PointsApplied > 0 && seg.PointsApplied < cost {
			partial = append(partial, seg)
		}
	}
	if len(partial) > 0 {
		sort.SliceStable(partial, func(i, j int) bool {
			return orderOf(partial[i].SegmentKey) < orderOf(partial[j].SegmentKey)
		})
		return partial[0], true
	}

	return ledger.SegmentProgress{}, false
}
