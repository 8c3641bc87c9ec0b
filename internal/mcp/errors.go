package mcp

import (
	"errors"
	"fmt"

	"github.com/galleonship/galleon/internal/domain/facts"
	"github.com/galleonship/galleon/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Expected ledger
// outcomes (no project, deduped, nothing to damage) never reach here;
// they travel inside result payloads.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, facts.ErrInvalidDay):
		return &APIError{Code: "INVALID_DAY", Message: "invalid day", RecoveryHint: "Use YYYY-MM-DD"}
	case errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid input", RecoveryHint: "Check required fields"}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "ledger modified by another writer", RecoveryHint: "Retry the call"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "not found", RecoveryHint: "Check the identifier"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
