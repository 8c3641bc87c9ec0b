package repair_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/galleonship/galleon/internal/blueprint"
	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/domain/repair"
	"github.com/galleonship/galleon/internal/repository"
	"github.com/galleonship/galleon/internal/repository/mocks"
)

func testBlueprint() *blueprint.Blueprint {
	return &blueprint.Blueprint{
		ID:   "test",
		Name: "Test",
		Segments: []blueprint.Segment{
			{Key: "a", Label: "A", Cost: 100, OrderIndex: 0},
			{Key: "b", Label: "B", Cost: 200, OrderIndex: 1},
		},
	}
}

// expectPerfectDay wires the fact reads for one fully compliant day.
func expectPerfectDay(repo *mocks.FactsRepository, ctx context.Context, userID, day string) {
	repo.On("HasUsageViolation", ctx, userID, day).Return(false, nil)
	repo.On("HasTruthMismatch", ctx, userID, day).Return(false, nil)
	repo.On("GetStreakDay", ctx, userID, day).Return(&facts.StreakDay{
		UserID:     userID,
		Day:        day,
		UnderLimit: true,
	}, nil)
}

// expectImperfectDay marks a day as violated so it is skipped cheaply.
func expectImperfectDay(repo *mocks.FactsRepository, ctx context.Context, userID, day string) {
	repo.On("HasUsageViolation", ctx, userID, day).Return(true, nil)
}

func TestRepairService_RepairsPerfectDay(t *testing.T) {
	ctx := context.Background()
	bp := testBlueprint()

	projects := &mocks.ProjectRepository{}
	progress := &mocks.ProgressRepository{}
	events := &mocks.EventRepository{}
	factsRepo := &mocks.FactsRepository{}

	expectPerfectDay(factsRepo, ctx, "u1", "2026-08-31")
	for _, day := range []string{"2026-08-30", "2026-08-29", "2026-08-28", "2026-08-27", "2026-08-26", "2026-08-25"} {
		expectImperfectDay(factsRepo, ctx, "u1", day)
	}
	factsRepo.On("VerificationEnabled", ctx, "u1").Return(false, nil)

	events.On("DedupeKeyExists", ctx, "repair|u1|2026-08-31").Return(false, nil)
	projects.On("GetActive", ctx, "u1").Return(&ledger.Project{ID: "p1", UserID: "u1"}, nil)
	progress.On("ListSegments", ctx, "p1").Return([]ledger.SegmentProgress{
		{SegmentKey: "a", PointsApplied: 20},
		{SegmentKey: "b", PointsApplied: 180},
	}, nil)
	progress.On("ApplyRepair", ctx, mock.Anything).Return(nil)

	svc := repair.NewService(projects, progress, events, factsRepo, bp, nil)
	results, err := svc.AutoRepair(ctx, "u1", "2026-08-31")
	require.NoError(t, err)
	require.Len(t, results, repair.WindowDays)

	first := results[0]
	require.Equal(t, "2026-08-31", first.Day)
	require.True(t, first.Applied)
	// Deficits: a=80, b=20. The larger deficit wins.
	require.Equal(t, "a", first.SegmentKey)
	require.Equal(t, 50, first.PointsRestored)
	require.False(t, first.Completed)

	for _, res := range results[1:] {
		require.False(t, res.Applied)
		require.Equal(t, repair.ReasonNotPerfect, res.Reason)
	}

	ev := progress.Calls[1].Arguments.Get(1).(*ledger.Event)
	require.Equal(t, 50, ev.Delta)
	require.Equal(t, ledger.SourceRepair, ev.SourceType)
	require.NotNil(t, ev.DedupeKey)
	require.Equal(t, "repair|u1|2026-08-31", *ev.DedupeKey)
}

func TestRepairService_RepairCappedByDeficit(t *testing.T) {
	ctx := context.Background()
	bp := testBlueprint()

	projects := &mocks.ProjectRepository{}
	progress := &mocks.ProgressRepository{}
	events := &mocks.EventRepository{}
	factsRepo := &mocks.FactsRepository{}

	expectPerfectDay(factsRepo, ctx, "u1", "2026-08-31")
	for _, day := range []string{"2026-08-30", "2026-08-29", "2026-08-28", "2026-08-27", "2026-08-26", "2026-08-25"} {
		expectImperfectDay(factsRepo, ctx, "u1", day)
	}
	factsRepo.On("VerificationEnabled", ctx, "u1").Return(false, nil)

	events.On("DedupeKeyExists", ctx, mock.Anything).Return(false, nil)
	projects.On("GetActive", ctx, "u1").Return(&ledger.Project{ID: "p1", UserID: "u1"}, nil)
	progress.On("ListSegments", ctx, "p1").Return([]ledger.SegmentProgress{
		{SegmentKey: "a", PointsApplied: 90},
		{SegmentKey: "b", PointsApplied: 195},
	}, nil)
	progress.On("ApplyRepair", ctx, mock.Anything).Return(nil)

	svc := repair.NewService(projects, progress, events, factsRepo, bp, nil)
	results, err := svc.AutoRepair(ctx, "u1", "2026-08-31")
	require.NoError(t, err)

	first := results[0]
	require.True(t, first.Applied)
	require.Equal(t, "a", first.SegmentKey)
	require.Equal(t, 10, first.PointsRestored)
	require.True(t, first.Completed)
}

func TestRepairService_AlreadyRepaired(t *testing.T) {
	ctx := context.Background()
	bp := testBlueprint()

	projects := &mocks.ProjectRepository{}
	events := &mocks.EventRepository{}
	factsRepo := &mocks.FactsRepository{}

	expectPerfectDay(factsRepo, ctx, "u1", "2026-08-31")
	for _, day := range []string{"2026-08-30", "2026-08-29", "2026-08-28", "2026-08-27", "2026-08-26", "2026-08-25"} {
		expectImperfectDay(factsRepo, ctx, "u1", day)
	}
	factsRepo.On("VerificationEnabled", ctx, "u1").Return(false, nil)
	events.On("DedupeKeyExists", ctx, "repair|u1|2026-08-31").Return(true, nil)

	svc := repair.NewService(projects, &mocks.ProgressRepository{}, events, factsRepo, bp, nil)
	results, err := svc.AutoRepair(ctx, "u1", "2026-08-31")
	require.NoError(t, err)
	require.True(t, results[0].Deduped)
	require.False(t, results[0].Applied)
	projects.AssertNotCalled(t, "GetActive", mock.Anything, mock.Anything)
}

func TestRepairService_BrokenStreakDayNotPerfect(t *testing.T) {
	ctx := context.Background()
	bp := testBlueprint()

	factsRepo := &mocks.FactsRepository{}
	factsRepo.On("HasUsageViolation", ctx, "u1", mock.Anything).Return(false, nil)
	factsRepo.On("HasTruthMismatch", ctx, "u1", mock.Anything).Return(false, nil)
	factsRepo.On("GetStreakDay", ctx, "u1", "2026-08-31").Return(&facts.StreakDay{
		UserID:     "u1",
		Day:        "2026-08-31",
		Broken:     true,
		UnderLimit: true,
	}, nil)
	for _, day := range []string{"2026-08-30", "2026-08-29", "2026-08-28", "2026-08-27", "2026-08-26", "2026-08-25"} {
		factsRepo.On("GetStreakDay", ctx, "u1", day).Return(nil, repository.ErrNotFound)
	}

	svc := repair.NewService(&mocks.ProjectRepository{}, &mocks.ProgressRepository{}, &mocks.EventRepository{}, factsRepo, bp, nil)
	results, err := svc.AutoRepair(ctx, "u1", "2026-08-31")
	require.NoError(t, err)
	for _, res := range results {
		require.False(t, res.Applied)
		require.Equal(t, repair.ReasonNotPerfect, res.Reason)
	}
}

func TestRepairService_VerificationGate(t *testing.T) {
	ctx := context.Background()
	bp := testBlueprint()

	factsRepo := &mocks.FactsRepository{}
	expectPerfectDay(factsRepo, ctx, "u1", "2026-08-31")
	for _, day := range []string{"2026-08-30", "2026-08-29", "2026-08-28", "2026-08-27", "2026-08-26", "2026-08-25"} {
		expectImperfectDay(factsRepo, ctx, "u1", day)
	}
	factsRepo.On("VerificationEnabled", ctx, "u1").Return(true, nil)
	factsRepo.On("GetTruthCheck", ctx, "u1", "2026-08-31").Return(&facts.TruthCheck{
		UserID: "u1",
		Day:    "2026-08-31",
		Status: facts.CheckPending,
	}, nil)

	// Verification on with a pending check: the day is not perfect.
	svc := repair.NewService(&mocks.ProjectRepository{}, &mocks.ProgressRepository{}, &mocks.EventRepository{}, factsRepo, bp, nil)
	results, err := svc.AutoRepair(ctx, "u1", "2026-08-31")
	require.NoError(t, err)
	require.False(t, results[0].Applied)
	require.Equal(t, repair.ReasonNotPerfect, results[0].Reason)
}

func TestRepairService_NoDeficit(t *testing.T) {
	ctx := context.Background()
	bp := testBlueprint()

	projects := &mocks.ProjectRepository{}
	progress := &mocks.ProgressRepository{}
	events := &mocks.EventRepository{}
	factsRepo := &mocks.FactsRepository{}

	expectPerfectDay(factsRepo, ctx, "u1", "2026-08-31")
	for _, day := range []string{"2026-08-30", "2026-08-29", "2026-08-28", "2026-08-27", "2026-08-26", "2026-08-25"} {
		expectImperfectDay(factsRepo, ctx, "u1", day)
	}
	factsRepo.On("VerificationEnabled", ctx, "u1").Return(false, nil)
	events.On("DedupeKeyExists", ctx, mock.Anything).Return(false, nil)
	projects.On("GetActive", ctx, "u1").Return(&ledger.Project{ID: "p1", UserID: "u1"}, nil)
	progress.On("ListSegments", ctx, "p1").Return([]ledger.SegmentProgress{
		{SegmentKey: "a", PointsApplied: 100},
		{SegmentKey: "b", PointsApplied: 200},
	}, nil)

	svc := repair.NewService(projects, progress, events, factsRepo, bp, nil)
	results, err := svc.AutoRepair(ctx, "u1", "2026-08-31")
	require.NoError(t, err)
	require.False(t, results[0].Applied)
	require.Equal(t, repair.ReasonNoDeficit, results[0].Reason)
	progress.AssertNotCalled(t, "ApplyRepair", mock.Anything, mock.Anything)
}

func TestRepairService_InvalidDay(t *testing.T) {
	bp := testBlueprint()
	svc := repair.NewService(&mocks.ProjectRepository{}, &mocks.ProgressRepository{}, &mocks.EventRepository{}, &mocks.FactsRepository{}, bp, nil)

	_, err := svc.AutoRepair(context.Background(), "u1", "yesterday")
	require.ErrorIs(t, err, facts.ErrInvalidDay)
}

func TestMostDamaged(t *testing.T) {
	bp := testBlueprint()

	// Missing progress rows count as fully damaged.
	prog, deficit, ok := repair.MostDamaged(bp, nil)
	require.True(t, ok)
	require.Equal(t, "b", prog.SegmentKey)
	require.Equal(t, 200, deficit)

	// Equal deficits: lowest order index wins.
	prog, deficit, ok = repair.MostDamaged(bp, []ledger.SegmentProgress{
		{SegmentKey: "a", PointsApplied: 50},
		{SegmentKey: "b", PointsApplied: 150},
	})
	require.True(t, ok)
	require.Equal(t, "a", prog.SegmentKey)
	require.Equal(t, 50, deficit)

	_, _, ok = repair.MostDamaged(bp, []ledger.SegmentProgress{
		{SegmentKey: "a", PointsApplied: 100},
		{SegmentKey: "b", PointsApplied: 200},
	})
	require.False(t, ok)
}
