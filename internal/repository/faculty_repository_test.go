package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

func TestFacultyRepositoryLoadAndReplace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faculty-auth.json"), []byte(`{
  "secureKeyHash": "$2a$10$abc",
  "faculty": [{"id": "F001", "name": "Dr. Rao", "role": "ADMIN"}]
}`), 0o644))
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	repo := NewFacultyRepository(store, "")

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Faculty, 1)
	assert.Equal(t, models.RoleAdmin, loaded.Faculty[0].Role)

	loaded.Faculty[0].Name = "mutated"
	again, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rao", again.Faculty[0].Name)

	replacement := &models.FacultyDirectory{
		SecureKeyHash: "$2a$10$def",
		Faculty:       []models.FacultyMember{{ID: "F002", Name: "Prof. Iyer", Role: models.RoleFaculty}},
	}
	require.NoError(t, repo.Replace(ctx, replacement))

	fresh, err := NewFacultyRepository(store, "").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$def", fresh.SecureKeyHash)
	assert.Equal(t, "F002", fresh.Faculty[0].ID)
}

func TestFacultyRepositoryMissing(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = NewFacultyRepository(store, "missing.json").Load(context.Background())
	assert.ErrorIs(t, err, ErrDirectoryNotFound)
}
