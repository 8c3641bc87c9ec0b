package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galleonship/galleon/internal/repository"
)

func TestProjectRepository_GetOrCreate(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj, err := repo.GetOrCreate(ctx, "u1", "galleon-v1")
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, "u1", proj.UserID)
	require.Equal(t, "galleon-v1", proj.BlueprintID)
	require.True(t, proj.Active)

	// Second call returns the same row.
	again, err := repo.GetOrCreate(ctx, "u1", "galleon-v1")
	require.NoError(t, err)
	require.Equal(t, proj.ID, again.ID)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM projects WHERE user_id = ?`, "u1").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestProjectRepository_GetActive(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.GetActive(ctx, "u1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	created, err := repo.GetOrCreate(ctx, "u1", "galleon-v1")
	require.NoError(t, err)

	proj, err := repo.GetActive(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, created.ID, proj.ID)
}

func TestProjectRepository_UserIsolation(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	p1, err := repo.GetOrCreate(ctx, "u1", "galleon-v1")
	require.NoError(t, err)
	p2, err := repo.GetOrCreate(ctx, "u2", "galleon-v1")
	require.NoError(t, err)
	require.NotEqual(t, p1.ID, p2.ID)

	proj, err := repo.GetActive(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, p2.ID, proj.ID)
}
