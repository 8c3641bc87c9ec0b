package repair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/galleonship/galleon/internal/blueprint"
	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/repository"
)

// Service restores points for fully rule-compliant days. Each day in the
// trailing window is evaluated and applied independently; a day that was
// already repaired, or was not perfect, is a cheap no-op.
type Service struct {
	projects ledger.ProjectRepository
	progress ledger.ProgressRepository
	events   ledger.EventRepository
	facts    facts.Repository
	bp       *blueprint.Blueprint
	logger   *slog.Logger
}

// NewService creates a new repair service.
func NewService(projects ledger.ProjectRepository, progress ledger.ProgressRepository, events ledger.EventRepository, factsRepo facts.Repository, bp *blueprint.Blueprint, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		projects: projects,
		progress: progress,
		events:   events,
		facts:    factsRepo,
		bp:       bp,
		logger:   logger,
	}
}

// DedupeKey builds the deterministic idempotency key for a repair day.
func DedupeKey(userID, day string) string {
	return fmt.Sprintf("repair|%s|%s", userID, day)
}

// AutoRepair examines the given day and the six before it, applying one
// repair per perfect day. Results are ordered most recent day first.
func (s *Service) AutoRepair(ctx context.Context, userID, day string) ([]Result, error) {
	if _, err := facts.ParseDay(day); err != nil {
		return nil, err
	}

	results := make([]Result, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		d, err := facts.DayBefore(day, i)
		if err != nil {
			return nil, err
		}
		res, err := s.repairDay(ctx, userID, d)
		if err != nil {
			return nil, fmt.Errorf("repairing %s: %w", d, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) repairDay(ctx context.Context, userID, day string) (Result, error) {
	res := Result{Day: day}

	perfect, err := s.isPerfectDay(ctx, userID, day)
	if err != nil {
		return res, err
	}
	if !perfect {
		res.Reason = ReasonNotPerfect
		return res, nil
	}

	key := DedupeKey(userID, day)
	exists, err := s.events.DedupeKeyExists(ctx, key)
	if err != nil {
		return res, fmt.Errorf("checking dedupe key: %w", err)
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
		return res, fmt.Errorf("getting project: %w", err)
	}

	segments, err := s.progress.ListSegments(ctx, proj.ID)
	if err != nil {
		return res, fmt.Errorf("listing segments: %w", err)
	}

	target, deficit, ok := MostDamaged(s.bp, segments)
	if !ok {
		res.Reason = ReasonNoDeficit
		return res, nil
	}

	points := RepairPoints
	if points > deficit {
		points = deficit
	}

	seg, _ := s.bp.Segment(target.SegmentKey)
	total := target.PointsApplied + points
	completed := total >= seg.Cost
	now := time.Now().UTC()
	ev := &ledger.Event{
		ID:         uuid.NewString(),
		ProjectID:  proj.ID,
		UserID:     userID,
		Delta:      points,
		SourceType: ledger.SourceRepair,
		DedupeKey:  &key,
		Breakdown: []ledger.SegmentAllocation{{
			SegmentKey:     target.SegmentKey,
			AppliedDelta:   points,
			ResultingTotal: total,
			Completed:      completed,
			Cost:           seg.Cost,
		}},
		Note:      fmt.Sprintf("perfect day %s: restored %d points to %s", day, points, seg.Label),
		CreatedAt: now,
	}

	if err := s.progress.ApplyRepair(ctx, ev); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			res.Deduped = true
			return res, nil
		}
		return res, fmt.Errorf("applying repair: %w", err)
	}

	s.logger.Info("repair applied",
		"user_id", userID,
		"day", day,
		"segment", target.SegmentKey,
		"points", points,
		"completed", completed)

	res.Applied = true
	res.SegmentKey = target.SegmentKey
	res.PointsRestored = points
	res.Completed = completed
	return res, nil
}

// isPerfectDay checks full rule compliance for one calendar day: no usage
// violation, no truth mismatch, an intact under-limit streak day, and a
// matching truth check when the user has verification enabled.
func (s *Service) isPerfectDay(ctx context.Context, userID, day string) (bool, error) {
	violated, err := s.facts.HasUsageViolation(ctx, userID, day)
	if err != nil {
		return false, fmt.Errorf("checking usage violations: %w", err)
	}
	if violated {
		return false, nil
	}

	mismatched, err := s.facts.HasTruthMismatch(ctx, userID, day)
	if err != nil {
		return false, fmt.Errorf("checking truth mismatches: %w", err)
	}
	if mismatched {
		return false, nil
	}

	streak, err := s.facts.GetStreakDay(ctx, userID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking streak history: %w", err)
	}
	if streak.Broken || !streak.UnderLimit || streak.ViolationCount > 0 {
		return false, nil
	}

	enabled, err := s.facts.VerificationEnabled(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("checking verification flag: %w", err)
	}
	if enabled {
		check, err := s.facts.GetTruthCheck(ctx, userID, day)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("checking truth check: %w", err)
		}
		if check.Status != facts.CheckMatch {
			return false, nil
		}
	}

	return true, nil
}

// MostDamaged returns the segment with the largest positive deficit
// (cost minus points applied), ties broken by order index. Pure function
// over a snapshot.
func MostDamaged(bp *blueprint.Blueprint, segments []ledger.SegmentProgress) (ledger.SegmentProgress, int, bool) {
	applied := make(map[string]ledger.SegmentProgress, len(segments))
	for _, seg := range segments {
		applied[seg.SegmentKey] = seg
	}

	type candidate struct {
		prog    ledger.SegmentProgress
		deficit int
		order   int
	}
	var candidates []candidate
	for _, seg := range bp.Segments {
		prog, ok := applied[seg.Key]
		if !ok {
			prog = ledger.SegmentProgress{SegmentKey: seg.Key}
		}
		deficit := seg.Cost - prog.PointsApplied
		if deficit > 0 {
			candidates = append(candidates, candidate{prog: prog, deficit: deficit, order: seg.OrderIndex})
		}
	}
	if len(candidates) == 0 {
		return ledger.SegmentProgress{}, 0, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].deficit != candidates[j].deficit {
			return candidates[i].deficit > candidates[j].deficit
		}
		return candidates[i].order < candidates[j].order
	})
	return candidates[0].prog, candidates[0].deficit, true
}
