package facts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/galleonship/galleon/internal/repository"
)

// Service validates and records trigger facts on behalf of the upstream
// evaluators. The ledger core only ever reads them.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new facts service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func validateKey(userID, day string) error {
	if strings.TrimSpace(userID) == "" {
		return repository.ErrInvalidInput
	}
	if _, err := ParseDay(day); err != nil {
		return err
	}
	return nil
}

// RecordUsageViolation upserts a usage-violation fact for (user, day).
func (s *Service) RecordUsageViolation(ctx context.Context, v *UsageViolation) error {
	if v == nil {
		return repository.ErrInvalidInput
	}
	if err := validateKey(v.UserID, v.Day); err != nil {
		return err
	}
	if v.OverageMin <= 0 || v.DailyLimitMin < 0 {
		return repository.ErrInvalidInput
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.RecordUsageViolation(ctx, v); err != nil {
		return fmt.Errorf("recording usage violation: %w", err)
	}
	s.logger.Info("usage violation recorded", "user_id", v.UserID, "day", v.Day, "overage_min", v.OverageMin)
	return nil
}

// RecordTruthMismatch upserts a truth-mismatch fact for (user, day).
func (s *Service) RecordTruthMismatch(ctx context.Context, m *TruthMismatch) error {
	if m == nil {
		return repository.ErrInvalidInput
	}
	if err := validateKey(m.UserID, m.Day); err != nil {
		return err
	}
	if m.ReportedMin < 0 || m.VerifiedMin < 0 {
		return repository.ErrInvalidInput
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.RecordTruthMismatch(ctx, m); err != nil {
		return fmt.Errorf("recording truth mismatch: %w", err)
	}
	s.logger.Info("truth mismatch recorded", "user_id", m.UserID, "day", m.Day)
	return nil
}

// RecordStreakDay upserts one day of streak history.
func (s *Service) RecordStreakDay(ctx context.Context, d *StreakDay) error {
	if d == nil {
		return repository.ErrInvalidInput
	}
	if err := validateKey(d.UserID, d.Day); err != nil {
		return err
	}
	if d.ViolationCount < 0 {
		return repository.ErrInvalidInput
	}
	if err := s.repo.RecordStreakDay(ctx, d); err != nil {
		return fmt.Errorf("recording streak day: %w", err)
	}
	return nil
}

// RecordTruthCheck upserts a daily truth-check result.
func (s *Service) RecordTruthCheck(ctx context.Context, c *TruthCheck) error {
	if c == nil {
		return repository.ErrInvalidInput
	}
	if err := validateKey(c.UserID, c.Day); err != nil {
		return err
	}
	switch c.Status {
	case CheckMatch, CheckMismatch, CheckPending:
	default:
		return repository.ErrInvalidInput
	}
	if err := s.repo.RecordTruthCheck(ctx, c); err != nil {
		return fmt.Errorf("recording truth check: %w", err)
	}
	return nil
}

// SetVerification flips the user's iPhone-verification flag.
func (s *Service) SetVerification(ctx context.Context, userID string, enabled bool) error {
	if strings.TrimSpace(userID) == "" {
		return repository.ErrInvalidInput
	}
	if err := s.repo.SetVerification(ctx, userID, enabled); err != nil {
		return fmt.Errorf("setting verification: %w", err)
	}
	return nil
}
