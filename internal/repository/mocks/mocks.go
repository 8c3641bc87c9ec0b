package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/galleonship/galleon/internal/domain/attack"
	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/domain/ledger"
)

// ProjectRepository is a mock for ledger.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) GetActive(ctx context.Context, userID string) (*ledger.Project, error) {
	args := m.Called(ctx, userID)
	if proj, ok := args.Get(0).(*ledger.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) GetOrCreate(ctx context.Context, userID, blueprintID string) (*ledger.Project, error) {
	args := m.Called(ctx, userID, blueprintID)
	if proj, ok := args.Get(0).(*ledger.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProgressRepository is a mock for ledger.ProgressRepository.
type ProgressRepository struct {
	mock.Mock
}

func (m *ProgressRepository) ListSegments(ctx context.Context, projectID string) ([]ledger.SegmentProgress, error) {
	args := m.Called(ctx, projectID)
	if segs, ok := args.Get(0).([]ledger.SegmentProgress); ok {
		return segs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProgressRepository) ApplyAllocation(ctx context.Context, ev *ledger.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *ProgressRepository) ApplyRepair(ctx context.Context, ev *ledger.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// EventRepository is a mock for ledger.EventRepository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) List(ctx context.Context, userID string, limit int) ([]ledger.Event, error) {
	args := m.Called(ctx, userID, limit)
	if events, ok := args.Get(0).([]ledger.Event); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EventRepository) DedupeKeyExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// AttackRepository is a mock for attack.Repository.
type AttackRepository struct {
	mock.Mock
}

func (m *AttackRepository) Apply(ctx context.Context, ev *ledger.Event, rec *attack.Record) error {
	args := m.Called(ctx, ev, rec)
	return args.Error(0)
}

func (m *AttackRepository) DedupeKeyExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *AttackRepository) List(ctx context.Context, userID string, limit int) ([]attack.Record, error) {
	args := m.Called(ctx, userID, limit)
	if records, ok := args.Get(0).([]attack.Record); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

// FactsRepository is a mock for facts.Repository.
type FactsRepository struct {
	mock.Mock
}

func (m *FactsRepository) HasUsageViolation(ctx context.Context, userID, day string) (bool, error) {
	args := m.Called(ctx, userID, day)
	return args.Bool(0), args.Error(1)
}

func (m *FactsRepository) HasTruthMismatch(ctx context.Context, userID, day string) (bool, error) {
	args := m.Called(ctx, userID, day)
	return args.Bool(0), args.Error(1)
}

func (m *FactsRepository) HasStreakBreak(ctx context.Context, userID, day string) (bool, error) {
	args := m.Called(ctx, userID, day)
	return args.Bool(0), args.Error(1)
}

func (m *FactsRepository) GetStreakDay(ctx context.Context, userID, day string) (*facts.StreakDay, error) {
	args := m.Called(ctx, userID, day)
	if sd, ok := args.Get(0).(*facts.StreakDay); ok {
		return sd, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FactsRepository) GetTruthCheck(ctx context.Context, userID, day string) (*facts.TruthCheck, error) {
	args := m.Called(ctx, userID, day)
	if tc, ok := args.Get(0).(*facts.TruthCheck); ok {
		return tc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FactsRepository) VerificationEnabled(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *FactsRepository) RecordUsageViolation(ctx context.Context, v *facts.UsageViolation) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *FactsRepository) RecordTruthMismatch(ctx context.Context, mm *facts.TruthMismatch) error {
	args := m.Called(ctx, mm)
	return args.Error(0)
}

func (m *FactsRepository) RecordStreakDay(ctx context.Context, d *facts.StreakDay) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *FactsRepository) RecordTruthCheck(ctx context.Context, c *facts.TruthCheck) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *FactsRepository) SetVerification(ctx context.Context, userID string, enabled bool) error {
	args := m.Called(ctx, userID, enabled)
	return args.Error(0)
}
