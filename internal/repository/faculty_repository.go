package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

// FacultyRepository reads and replaces the faculty authorization document.
// The parsed document is cached until the next Replace.
type FacultyRepository struct {
	store blobStore
	name  string

	mu     sync.RWMutex
	cached *models.FacultyDirectory
}

// NewFacultyRepository constructs the repository for the named document.
func NewFacultyRepository(store blobStore, name string) *FacultyRepository {
	if name == "" {
		name = "faculty-auth.json"
	}
	return &FacultyRepository{store: store, name: name}
}

// Load returns the directory or ErrDirectoryNotFound.
func (r *FacultyRepository) Load(ctx context.Context) (*models.FacultyDirectory, error) {
	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()
	if cached != nil {
		return cloneDirectory(cached), nil
	}

	rc, err := r.store.Open(ctx, r.name)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, ErrDirectoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open faculty directory: %w", err)
	}
	defer rc.Close() //nolint:errcheck

	var dir models.FacultyDirectory
	if err := json.NewDecoder(rc).Decode(&dir); err != nil {
		return nil, fmt.Errorf("decode faculty directory: %w", err)
	}

	r.mu.Lock()
	r.cached = cloneDirectory(&dir)
	r.mu.Unlock()
	return &dir, nil
}

// Replace overwrites the document.
func (r *FacultyRepository) Replace(ctx context.Context, dir *models.FacultyDirectory) error {
	if dir == nil {
		return fmt.Errorf("replace faculty directory: directory is nil")
	}
	data, err := json.MarshalIndent(dir, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal faculty directory: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.store.Save(ctx, r.name, data, "application/json"); err != nil {
		return fmt.Errorf("write faculty directory: %w", err)
	}
	r.cached = cloneDirectory(dir)
	return nil
}

func cloneDirectory(dir *models.FacultyDirectory) *models.FacultyDirectory {
	out := &models.FacultyDirectory{SecureKeyHash: dir.SecureKeyHash}
	out.Faculty = append([]models.FacultyMember(nil), dir.Faculty...)
	return out
}
