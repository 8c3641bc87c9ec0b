package facts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/repository"
	"github.com/galleonship/galleon/internal/repository/mocks"
)

func TestFactsService_RecordUsageViolation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FactsRepository{}
	repo.On("RecordUsageViolation", ctx, mock.Anything).Return(nil)

	svc := facts.NewService(repo, nil)
	v := &facts.UsageViolation{UserID: "u1", Day: "2026-08-31", OverageMin: 45, DailyLimitMin: 120}
	require.NoError(t, svc.RecordUsageViolation(ctx, v))
	require.False(t, v.CreatedAt.IsZero(), "created_at should be defaulted")
}

func TestFactsService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := facts.NewService(&mocks.FactsRepository{}, nil)

	err := svc.RecordUsageViolation(ctx, nil)
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	err = svc.RecordUsageViolation(ctx, &facts.UsageViolation{UserID: "", Day: "2026-08-31", OverageMin: 10})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	err = svc.RecordUsageViolation(ctx, &facts.UsageViolation{UserID: "u1", Day: "not-a-day", OverageMin: 10})
	require.ErrorIs(t, err, facts.ErrInvalidDay)

	err = svc.RecordUsageViolation(ctx, &facts.UsageViolation{UserID: "u1", Day: "2026-08-31", OverageMin: 0})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	err = svc.RecordTruthMismatch(ctx, &facts.TruthMismatch{UserID: "u1", Day: "2026-08-31", ReportedMin: -5})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	err = svc.RecordStreakDay(ctx, &facts.StreakDay{UserID: "u1", Day: "2026-08-31", ViolationCount: -1})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	err = svc.RecordTruthCheck(ctx, &facts.TruthCheck{UserID: "u1", Day: "2026-08-31", Status: "maybe"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	err = svc.SetVerification(ctx, " ", true)
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestFactsService_RecordTruthCheck(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FactsRepository{}
	repo.On("RecordTruthCheck", ctx, mock.Anything).Return(nil)

	svc := facts.NewService(repo, nil)
	for _, status := range []facts.CheckStatus{facts.CheckMatch, facts.CheckMismatch, facts.CheckPending} {
		err := svc.RecordTruthCheck(ctx, &facts.TruthCheck{UserID: "u1", Day: "2026-08-31", Status: status})
		require.NoError(t, err)
	}
}
