package dto

import "github.com/noah-isme/exam-seating-api/internal/models"

// ExportRequest captures POST /seating/plan/exports payload.
type ExportRequest struct {
	Type   models.ExportType   `json:"type" validate:"required,oneof=room_list attendance_sheet summary"`
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	PlanID    string              `json:"planId"`
	Type      models.ExportType   `json:"type"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Attempts  int                 `json:"attempts"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
