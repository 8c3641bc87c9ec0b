package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/galleonship/galleon/internal/domain/ledger"
	"github.com/galleonship/galleon/internal/repository"
)

// ProjectRepository implements ledger.ProjectRepository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetActive retrieves the user's active project
func (r *ProjectRepository) GetActive(ctx context.Context, userID string) (*ledger.Project, error) {
	query := `
		SELECT id, user_id, blueprint_id, active, created_at
		FROM projects
		WHERE user_id = ? AND active = 1
		ORDER BY created_at ASC
		LIMIT 1
	`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active project: %w", err)
	}
	return proj, nil
}

// GetOrCreate returns the (user, blueprint) project, creating it lazily
// on first use. A concurrent creator losing the unique-constraint race
// falls back to the winner's row.
func (r *ProjectRepository) GetOrCreate(ctx context.Context, userID, blueprintID string) (*ledger.Project, error) {
	proj, err := r.get(ctx, userID, blueprintID)
	if err == nil {
		return proj, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	insert := `
		INSERT INTO projects (id, user_id, blueprint_id, active, created_at)
		VALUES (?, ?, ?, 1, ?)
	`
	_, err = r.db.ExecContext(ctx, insert, uuid.NewString(), userID, blueprintID, time.Now().UTC())
	if err != nil && !isUniqueViolation(err) {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return r.get(ctx, userID, blueprintID)
}

func (r *ProjectRepository) get(ctx context.Context, userID, blueprintID string) (*ledger.Project, error) {
	query := `
		SELECT id, user_id, blueprint_id, active, created_at
		FROM projects
		WHERE user_id = ? AND blueprint_id = ?
	`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, userID, blueprintID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}

func scanProject(row *sql.Row) (*ledger.Project, error) {
	var proj ledger.Project
	var active int
	if err := row.Scan(&proj.ID, &proj.UserID, &proj.BlueprintID, &active, &proj.CreatedAt); err != nil {
		return nil, err
	}
	proj.Active = active != 0
	return &proj, nil
}
