package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// UpdateExportJobParams defines the mutable fields of an export job.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	Attempts     *int
	ResultURL    *string
	StoragePath  *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// ExportJobRepository keeps export job metadata in memory. Finished jobs are
// forgotten once older than the retention window.
type ExportJobRepository struct {
	retention time.Duration
	mu        sync.RWMutex
	items     map[string]models.ExportJob
}

// NewExportJobRepository constructs the store.
func NewExportJobRepository(retention time.Duration) *ExportJobRepository {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &ExportJobRepository{retention: retention, items: make(map[string]models.ExportJob)}
}

// Create stores a new job, assigning id, status and timestamp defaults.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.items[job.ID] = *job
	r.mu.Unlock()
	return nil
}

// GetByID returns a copy of the job or ErrExportJobNotFound.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	r.mu.RLock()
	job, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrExportJobNotFound
	}
	if job.FinishedAt != nil && time.Since(*job.FinishedAt) > r.retention {
		r.mu.Lock()
		delete(r.items, id)
		r.mu.Unlock()
		return nil, ErrExportJobNotFound
	}
	return &job, nil
}

// Update applies the provided changes.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.items[id]
	if !ok {
		return ErrExportJobNotFound
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Attempts != nil {
		job.Attempts = *params.Attempts
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.StoragePath != nil {
		job.StoragePath = *params.StoragePath
	}
	if params.ErrorMessage != nil {
		if *params.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			msg := *params.ErrorMessage
			job.ErrorMessage = &msg
		}
	}
	if params.FinishedAt != nil {
		at := *params.FinishedAt
		job.FinishedAt = &at
	}
	r.items[id] = job
	return nil
}

// ListFinishedBefore returns finished or failed jobs that completed before
// cutoff, oldest first.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	r.mu.RLock()
	var out []models.ExportJob
	for _, job := range r.items {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, job)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.Before(*out[j].FinishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete forgets a job.
func (r *ExportJobRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
	return nil
}

// ListQueued returns jobs still waiting for a worker, oldest first.
func (r *ExportJobRepository) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	r.mu.RLock()
	var out []models.ExportJob
	for _, job := range r.items {
		if job.Status == models.ExportStatusQueued {
			out = append(out, job)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
