package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

func TestFilePlanRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	repo := NewFilePlanRepository(store)

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	require.NoError(t, repo.Save(ctx, samplePlan()))
	_, err = os.Stat(filepath.Join(dir, planFileName))
	require.NoError(t, err)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, samplePlan().Assignments, loaded.Assignments)
	assert.Equal(t, int64(42), loaded.Seed)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	require.NoError(t, repo.Clear(ctx))
}

func TestFilePlanRepositoryCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, planFileName), []byte("{not json"), 0o644))

	_, err = NewFilePlanRepository(store).Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPlanNotFound)
}
