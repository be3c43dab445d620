package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

const planFileName = "seating-plan.json"

type blobStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// FilePlanRepository keeps the latest seating plan as a JSON document.
// Writes replace the file atomically.
type FilePlanRepository struct {
	store blobStore
}

// NewFilePlanRepository constructs the repository on top of a blob store.
func NewFilePlanRepository(store blobStore) *FilePlanRepository {
	return &FilePlanRepository{store: store}
}

// Save replaces the current plan.
func (r *FilePlanRepository) Save(ctx context.Context, plan *models.SeatingPlan) error {
	if plan == nil {
		return fmt.Errorf("save seating plan: plan is nil")
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seating plan: %w", err)
	}
	if _, err := r.store.Save(ctx, planFileName, data, "application/json"); err != nil {
		return fmt.Errorf("save seating plan: %w", err)
	}
	return nil
}

// Load returns the current plan or ErrPlanNotFound.
func (r *FilePlanRepository) Load(ctx context.Context) (*models.SeatingPlan, error) {
	rc, err := r.store.Open(ctx, planFileName)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open seating plan: %w", err)
	}
	defer rc.Close() //nolint:errcheck

	var plan models.SeatingPlan
	if err := json.NewDecoder(rc).Decode(&plan); err != nil {
		return nil, fmt.Errorf("decode seating plan: %w", err)
	}
	return &plan, nil
}

// Clear removes the current plan.
func (r *FilePlanRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, planFileName); err != nil {
		return fmt.Errorf("clear seating plan: %w", err)
	}
	return nil
}
