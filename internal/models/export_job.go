package models

import "time"

// ExportType enumerates the printable views of a seating plan.
type ExportType string

const (
	ExportTypeRoomList        ExportType = "room_list"
	ExportTypeAttendanceSheet ExportType = "attendance_sheet"
	ExportTypeSummary         ExportType = "summary"
)

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob tracks one asynchronous export of the current plan.
type ExportJob struct {
	ID           string       `json:"id"`
	PlanID       string       `json:"planId"`
	Type         ExportType   `json:"type"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	Attempts     int          `json:"attempts"`
	ResultURL    *string      `json:"resultUrl,omitempty"`
	StoragePath  string       `json:"-"`
	ErrorMessage *string      `json:"error,omitempty"`
	CreatedBy    string       `json:"createdBy"`
	CreatedAt    time.Time    `json:"createdAt"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`
}
