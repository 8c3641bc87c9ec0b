package attack_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/galleonship/galleon/internal/blueprint"
	"github.com/galleonship/galleon/internal/domain/attack"
	"github.com/galleonship/galleon/internal/domain/ledger"
)

func testBlueprint() *blueprint.Blueprint {
	return &blueprint.Blueprint{
		ID:   "test",
		Name: "Test",
		Segments: []blueprint.Segment{
			{Key: "a", Label: "A", Cost: 100, OrderIndex: 0},
			{Key: "b", Label: "B", Cost: 200, OrderIndex: 1},
			{Key: "c", Label: "C", Cost: 300, OrderIndex: 2},
		},
	}
}

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestSelectTarget_MostRecentlyCompleted(t *testing.T) {
	bp := testBlueprint()
	segments := []ledger.SegmentProgress{
		{SegmentKey: "a", PointsApplied: 100, CompletedAt: at("2026-08-01T10:00:00Z")},
		{SegmentKey: "b", PointsApplied: 200, CompletedAt: at("2026-08-15T10:00:00Z")},
		{SegmentKey: "c", PointsApplied: 40},
	}

	target, ok := attack.SelectTarget(bp, segments)
	require.True(t, ok)
	require.Equal(t, "b", target.SegmentKey)
}

func TestSelectTarget_CompletionTimeTie(t *testing.T) {
	bp := testBlueprint()
	ts := at("2026-08-01T10:00:00Z")
	segments := []ledger.SegmentProgress{
		{SegmentKey: "b", PointsApplied: 200, CompletedAt: ts},
		{SegmentKey: "a", PointsApplied: 100, CompletedAt: ts},
	}

	// Same completion instant: lowest order index wins regardless of
	// input ordering.
	target, ok := attack.SelectTarget(bp, segments)
	require.True(t, ok)
	require.Equal(t, "a", target.SegmentKey)
}

func TestSelectTarget_FallsBackToPartial(t *testing.T) {
	bp := testBlueprint()
	segments := []ledger.SegmentProgress{
		{SegmentKey: "a", PointsApplied: 60},
		{SegmentKey: "b", PointsApplied: 10},
	}

	target, ok := attack.SelectTarget(bp, segments)
	require.True(t, ok)
	require.Equal(t, "a", target.SegmentKey)
}

func TestSelectTarget_NoProgress(t *testing.T) {
	bp := testBlueprint()

	_, ok := attack.SelectTarget(bp, nil)
	require.False(t, ok)

	_, ok = attack.SelectTarget(bp, []ledger.SegmentProgress{
		{SegmentKey: "a", PointsApplied: 0},
	})
	require.False(t, ok)
}
