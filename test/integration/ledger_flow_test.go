package integration_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galleonship/galleon/internal/blueprint"
	"github.com/galleonship/galleon/internal/domain/attack"
	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/domain/repair"
	"github.com/galleonship/galleon/internal/sqlite"
)

type testEnv struct {
	db *sqlite.DB
	bp *blueprint.Blueprint

	ledgerSvc *ledger.Service
	attackSvc *attack.Service
	repairSvc *repair.Service
	factsSvc  *facts.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	bp := blueprint.Default()

	projectRepo := sqlite.NewProjectRepository(db)
	progressRepo := sqlite.NewProgressRepository(db)
	eventRepo := sqlite.NewEventRepository(db)
	attackRepo := sqlite.NewAttackRepository(db)
	factsRepo := sqlite.NewFactsRepository(db)

	return &testEnv{
		db:        db,
		bp:        bp,
		ledgerSvc: ledger.NewService(projectRepo, progressRepo, eventRepo, bp, nil),
		attackSvc: attack.NewService(projectRepo, progressRepo, attackRepo, factsRepo, bp, nil),
		repairSvc: repair.NewService(projectRepo, progressRepo, eventRepo, factsRepo, bp, nil),
		factsSvc:  facts.NewService(factsRepo, nil),
	}
}

func TestIntegration_BuildAttackRepairCycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := "u1"

	// Earn enough to finish the keel (400) and start the frames.
	res, err := env.ledgerSvc.ApplyPoints(ctx, userID, ledger.ApplyPointsRequest{Points: 500})
	require.NoError(t, err)
	require.Equal(t, 500, res.TotalApplied)
	require.Len(t, res.Applied, 2)
	require.True(t, res.Applied[0].Completed)

	st, err := env.ledgerSvc.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "frames", st.CurrentSegment)
	require.True(t, st.Segments[0].Completed)
	require.NotNil(t, st.Segments[0].CompletedAt)

	// Record the fact, then strike: the completed keel takes the hit,
	// not the in-progress frames.
	require.NoError(t, env.factsSvc.RecordUsageViolation(ctx, &facts.UsageViolation{
		UserID: userID, Day: "2026-08-31", OverageMin: 45, DailyLimitMin: 120,
	}))
	atk, err := env.attackSvc.ApplyUsageViolation(ctx, userID, "2026-08-31", 45, 120)
	require.NoError(t, err)
	require.True(t, atk.Applied)
	require.Equal(t, "keel", atk.TargetSegment)
	require.Equal(t, 25, atk.DamageApplied)

	st, err = env.ledgerSvc.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 375, st.Segments[0].PointsApplied)
	// Damage reopened the segment.
	require.False(t, st.Segments[0].Completed)
	require.Nil(t, st.Segments[0].CompletedAt)
	require.Equal(t, "keel", st.CurrentSegment)

	// Replaying the same trigger day changes nothing.
	atk, err = env.attackSvc.ApplyUsageViolation(ctx, userID, "2026-08-31", 45, 120)
	require.NoError(t, err)
	require.True(t, atk.Deduped)
	require.False(t, atk.Applied)

	st2, err := env.ledgerSvc.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, st.TotalApplied, st2.TotalApplied)

	// A perfect next day repairs the most damaged segment.
	require.NoError(t, env.factsSvc.RecordStreakDay(ctx, &facts.StreakDay{
		UserID: userID, Day: "2026-09-01", UnderLimit: true,
	}))
	repairs, err := env.repairSvc.AutoRepair(ctx, userID, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, repairs, repair.WindowDays)

	applied := repairs[0]
	require.True(t, applied.Applied)
	// Deficits at this point: frames 500, hull_planking 800, etc. The
	// untouched largest-cost segment has the biggest deficit.
	require.Equal(t, "hull_planking", applied.SegmentKey)
	require.Equal(t, repair.RepairPoints, applied.PointsRestored)

	// Earlier days are not perfect (the violation day among them) and
	// earn nothing.
	for _, r := range repairs[1:] {
		require.False(t, r.Applied)
	}

	// Re-running the repair cycle is idempotent.
	repairs, err = env.repairSvc.AutoRepair(ctx, userID, "2026-09-01")
	require.NoError(t, err)
	require.True(t, repairs[0].Deduped)
	require.False(t, repairs[0].Applied)

	// Every movement is on the ledger: allocation, attack, repair.
	events, err := env.ledgerSvc.Events(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	total := 0
	for _, ev := range events {
		total += ev.Delta
	}
	st, err = env.ledgerSvc.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, st.TotalApplied, total)
}

func TestIntegration_DedupedAllocation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := "u1"

	res, err := env.ledgerSvc.ApplyPoints(ctx, userID, ledger.ApplyPointsRequest{
		Points:    120,
		SourceID:  "fs-1",
		DedupeKey: "focus|u1|fs-1",
	})
	require.NoError(t, err)
	require.Equal(t, 120, res.TotalApplied)

	res, err = env.ledgerSvc.ApplyPoints(ctx, userID, ledger.ApplyPointsRequest{
		Points:    120,
		SourceID:  "fs-1",
		DedupeKey: "focus|u1|fs-1",
	})
	require.NoError(t, err)
	require.True(t, res.Deduped)

	st, err := env.ledgerSvc.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 120, st.TotalApplied)
}

func TestIntegration_OverflowIsDropped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := "u1"

	total := env.bp.TotalCost()
	res, err := env.ledgerSvc.ApplyPoints(ctx, userID, ledger.ApplyPointsRequest{Points: total + 250})
	require.NoError(t, err)
	require.Equal(t, total, res.TotalApplied)
	require.Equal(t, 250, res.Remainder)

	st, err := env.ledgerSvc.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, total, st.TotalApplied)
	require.InDelta(t, 100.0, st.CompletionPct, 0.001)
	require.Equal(t, "", st.CurrentSegment)

	// Nothing left to fill: further points drop entirely.
	res, err = env.ledgerSvc.ApplyPoints(ctx, userID, ledger.ApplyPointsRequest{Points: 10})
	require.NoError(t, err)
	require.Empty(t, res.Applied)
	require.Equal(t, 10, res.Remainder)
}

func TestIntegration_StreakBreakOnPartialBuild(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := "u1"

	_, err := env.ledgerSvc.ApplyPoints(ctx, userID, ledger.ApplyPointsRequest{Points: 120})
	require.NoError(t, err)

	// No completed segment yet: the in-progress keel takes the hit, and
	// damage cannot exceed its applied points.
	atk, err := env.attackSvc.ApplyStreakBreak(ctx, userID, "2026-08-31", 10)
	require.NoError(t, err)
	require.True(t, atk.Applied)
	require.Equal(t, "keel", atk.TargetSegment)
	require.Equal(t, 500, atk.DamageRequested)
	require.Equal(t, 120, atk.DamageApplied)

	st, err := env.ledgerSvc.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 0, st.TotalApplied)

	log, err := env.attackSvc.Log(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, log, 1)
	require.Equal(t, facts.TriggerStreakBreak, log[0].Trigger)

	// The replay is still deduped even though the ship now has no
	// progressed segment left to target.
	atk2, err := env.attackSvc.ApplyStreakBreak(ctx, userID, "2026-08-31", 10)
	require.NoError(t, err)
	require.False(t, atk2.Applied)
	require.True(t, atk2.Deduped)
	require.Empty(t, atk2.Reason)

	st, err = env.ledgerSvc.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 0, st.TotalApplied)
}

func TestIntegration_NoProjectAttack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	atk, err := env.attackSvc.ApplyUsageViolation(ctx, "ghost", "2026-08-31", 45, 120)
	require.NoError(t, err)
	require.False(t, atk.Applied)
	require.Equal(t, attack.ReasonNoProject, atk.Reason)
}
