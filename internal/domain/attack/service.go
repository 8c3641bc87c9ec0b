package attack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/galleonship/galleon/internal/blueprint"
	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/repository"
)

// Service applies punitive attacks to the progress ledger. Triggers are
// fully resolved by upstream evaluators; this service only computes
// damage, picks a target, and writes the mutation exactly once per
// (user, day, trigger).
type Service struct {
	projects ledger.ProjectRepository
	progress ledger.ProgressRepository
	attacks  Repository
	facts    facts.Repository
	bp       *blueprint.Blueprint
	logger   *slog.Logger
}

// NewService creates a new attack service.
func NewService(projects ledger.ProjectRepository, progress ledger.ProgressRepository, attacks Repository, factsRepo facts.Repository, bp *blueprint.Blueprint, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		projects: projects,
		progress: progress,
		attacks:  attacks,
		facts:    factsRepo,
		bp:       bp,
		logger:   logger,
	}
}

// ApplyUsageViolation applies an attack for exceeding the daily usage
// limit on the given day.
func (s *Service) ApplyUsageViolation(ctx context.Context, userID, day string, overageMin, dailyLimitMin int) (*Result, error) {
	cd, err := facts.ConsecutiveDays(ctx, s.facts, userID, day, facts.TriggerUsageViolation)
	if err != nil {
		return nil, fmt.Errorf("counting consecutive days: %w", err)
	}
	dmg := UsageViolationDamage(overageMin, dailyLimitMin, cd)
	desc := fmt.Sprintf("usage violation: %d min over the %d min limit (day %d of run)", overageMin, dailyLimitMin, cd)
	return s.apply(ctx, userID, day, facts.TriggerUsageViolation, dmg, cd, desc)
}

// ApplyTruthMismatch applies an attack for a reported-vs-verified usage
// discrepancy on the given day.
func (s *Service) ApplyTruthMismatch(ctx context.Context, userID, day string, reportedMin, verifiedMin int) (*Result, error) {
	cd, err := facts.ConsecutiveDays(ctx, s.facts, userID, day, facts.TriggerTruthMismatch)
	if err != nil {
		return nil, fmt.Errorf("counting consecutive days: %w", err)
	}
	dmg := TruthMismatchDamage(reportedMin, verifiedMin, cd)
	desc := fmt.Sprintf("truth mismatch: reported %d min, verified %d min (day %d of run)", reportedMin, verifiedMin, cd)
	return s.apply(ctx, userID, day, facts.TriggerTruthMismatch, dmg, cd, desc)
}

// ApplyStreakBreak applies an attack for losing a streak of the given
// length. Streak-break damage does not escalate with consecutive days.
func (s *Service) ApplyStreakBreak(ctx context.Context, userID, day string, previousStreakDays int) (*Result, error) {
	if _, err := facts.ParseDay(day); err != nil {
		return nil, err
	}
	dmg := StreakBreakDamage(previousStreakDays)
	desc := fmt.Sprintf("streak break: lost a %d day streak", previousStreakDays)
	return s.apply(ctx, userID, day, facts.TriggerStreakBreak, dmg, 1, desc)
}

// Log lists the most recent attack records for a user.
func (s *Service) Log(ctx context.Context, userID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.attacks.List(ctx, userID, limit)
}

// DedupeKey builds the deterministic idempotency key for an attack.
func DedupeKey(userID, day string, trigger facts.Trigger) string {
	return fmt.Sprintf("%s|%s|%s", userID, day, trigger)
}

func (s *Service) apply(ctx context.Context, userID, day string, trigger facts.Trigger, requested, consecutiveDays int, description string) (*Result, error) {
	res := &Result{
		Trigger:         string(trigger),
		DamageRequested: requested,
		ConsecutiveDays: consecutiveDays,
	}

	key := DedupeKey(userID, day, trigger)
	exists, err := s.attacks.DedupeKeyExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("checking dedupe key: %w", err)
	}
	if exists {
		res.Deduped = true
		return res, nil
	}

	proj, err := s.projects.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			res.Reason = ReasonNoProject
			return res, nil
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}

	segments, err := s.progress.ListSegments(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("listing segments: %w", err)
	}

	target, ok := SelectTarget(s.bp, segments)
	if !ok {
		res.Reason = ReasonNoProgress
		return res, nil
	}

	damage := requested
	if damage > target.PointsApplied {
		damage = target.PointsApplied
	}
	if damage <= 0 {
		res.Reason = ReasonNoPoints
		return res, nil
	}

	seg, _ := s.bp.Segment(target.SegmentKey)
	now := time.Now().UTC()
	rec := &Record{
		ID:              uuid.NewString(),
		UserID:          userID,
		ProjectID:       proj.ID,
		Trigger:         trigger,
		TargetSegment:   target.SegmentKey,
		DamageApplied:   damage,
		Severity:        SeverityTier(damage),
		ConsecutiveDays: consecutiveDays,
		DedupeKey:       key,
		Description:     description,
		CreatedAt:       now,
	}
	ev := &ledger.Event{
		ID:         uuid.NewString(),
		ProjectID:  proj.ID,
		UserID:     userID,
		Delta:      -damage,
		SourceType: ledger.SourceAttack,
		SourceID:   &rec.ID,
		Breakdown: []ledger.SegmentAllocation{{
			SegmentKey:     target.SegmentKey,
			AppliedDelta:   -damage,
			ResultingTotal: target.PointsApplied - damage,
			Completed:      target.PointsApplied-damage >= seg.Cost,
			Cost:           seg.Cost,
		}},
		Note:      description,
		CreatedAt: now,
	}

	if err := s.attacks.Apply(ctx, ev, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			res.Deduped = true
			return res, nil
		}
		return nil, fmt.Errorf("applying attack: %w", err)
	}

	s.logger.Info("attack applied",
		"user_id", userID,
		"day", day,
		"trigger", trigger,
		"target", target.SegmentKey,
		"damage", damage,
		"severity", rec.Severity,
		"consecutive_days", consecutiveDays)

	res.Applied = true
	res.TargetSegment = target.SegmentKey
	res.DamageApplied = damage
	res.Severity = rec.Severity
	return res, nil
}
