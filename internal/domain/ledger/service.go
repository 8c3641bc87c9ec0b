package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/galleonship/galleon/internal/blueprint"
	"github.com/galleonship/galleon/internal/repository"
)

// Service owns the progress ledger: lazy project creation, point
// allocation, and the status view.
type Service struct {
	projects ProjectRepository
	progress ProgressRepository
	events   EventRepository
	bp       *blueprint.Blueprint
	logger   *slog.Logger
}

// NewService creates a new ledger service.
func NewService(projects ProjectRepository, progress ProgressRepository, events EventRepository, bp *blueprint.Blueprint, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{projects: projects, progress: progress, events: events, bp: bp, logger: logger}
}

// ApplyPointsRequest defines an allocation call.
type ApplyPointsRequest struct {
	Points     int
	SourceType string
	SourceID   string
	DedupeKey  string
}

// ApplyPoints distributes a positive point quantity across the user's
// incomplete segments in order. Non-positive quantities are a no-op
// result, not an error. A duplicate dedupe key returns the result with
// Deduped set and no state change.
func (s *Service) ApplyPoints(ctx context.Context, userID string, req ApplyPointsRequest) (*AllocationResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, repository.ErrInvalidInput
	}
	if req.Points <= 0 {
		return &AllocationResult{}, nil
	}

	proj, err := s.projects.GetOrCreate(ctx, userID, s.bp.ID)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	segments, err := s.progress.ListSegments(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("listing segments: %w", err)
	}

	allocations, remainder := Allocate(s.bp, segments, req.Points)
	if len(allocations) == 0 {
		// Every segment is already full; the excess is dropped.
		return &AllocationResult{Remainder: remainder}, nil
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = SourceAllocation
	}

	ev := &Event{
		ID:         uuid.NewString(),
		ProjectID:  proj.ID,
		UserID:     userID,
		Delta:      req.Points - remainder,
		SourceType: sourceType,
		Breakdown:  allocations,
		Note:       fmt.Sprintf("allocated %d points across %d segments", req.Points-remainder, len(allocations)),
		CreatedAt:  time.Now().UTC(),
	}
	if req.SourceID != "" {
		ev.SourceID = &req.SourceID
	}
	if req.DedupeKey != "" {
		ev.DedupeKey = &req.DedupeKey
	}

	if err := s.progress.ApplyAllocation(ctx, ev); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return &AllocationResult{Deduped: true}, nil
		}
		return nil, fmt.Errorf("applying allocation: %w", err)
	}

	s.logger.Info("points allocated",
		"user_id", userID,
		"points", req.Points,
		"applied", ev.Delta,
		"remainder", remainder,
		"source_type", sourceType)

	return &AllocationResult{
		Applied:      allocations,
		TotalApplied: ev.Delta,
		Remainder:    remainder,
		EventID:      ev.ID,
	}, nil
}

// Status returns the full progress view for the user's build. A user with
// no project gets the blueprint with zeroed progress; reads never create
// projects.
func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	byKey := map[string]SegmentProgress{}

	proj, err := s.projects.GetActive(ctx, userID)
	switch {
	case err == nil:
		segments, err := s.progress.ListSegments(ctx, proj.ID)
		if err != nil {
			return nil, fmt.Errorf("listing segments: %w", err)
		}
		for _, seg := range segments {
			byKey[seg.SegmentKey] = seg
		}
	case errors.Is(err, repository.ErrNotFound):
		// Zeroed view over the blueprint.
	default:
		return nil, fmt.Errorf("getting project: %w", err)
	}

	st := &Status{
		BlueprintID:   s.bp.ID,
		BlueprintName: s.bp.Name,
		TotalCost:     s.bp.TotalCost(),
	}
	for _, seg := range s.bp.Segments {
		prog := byKey[seg.Key]
		completed := prog.PointsApplied >= seg.Cost
		st.Segments = append(st.Segments, SegmentStatus{
			Key:           seg.Key,
			Label:         seg.Label,
			Phase:         seg.Phase,
			Cost:          seg.Cost,
			PointsApplied: prog.PointsApplied,
			Completed:     completed,
			CompletedAt:   prog.CompletedAt,
		})
		st.TotalApplied += prog.PointsApplied
		if !completed && st.CurrentSegment == "" {
			st.CurrentSegment = seg.Key
		}
	}
	if st.TotalCost > 0 {
		st.CompletionPct = float64(st.TotalApplied) / float64(st.TotalCost) * 100
	}
	return st, nil
}

// Events lists the most recent ledger events for a user.
func (s *Service) Events(ctx context.Context, userID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.events.List(ctx, userID, limit)
}
