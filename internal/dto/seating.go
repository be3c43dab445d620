package dto

import "github.com/noah-isme/exam-seating-api/internal/models"

// RosterSource is one tabular roster blob with a header row.
type RosterSource struct {
	Name string `json:"name"`
	Text string `json:"text" validate:"required"`
}

// AllocateSeatingRequest captures POST /seating/allocate payload. One of
// Sources or Students must be provided. Layout and schedule are checked by the
// allocation engine so that errors name the offending room or field.
type AllocateSeatingRequest struct {
	Sources  []RosterSource      `json:"sources" validate:"required_without=Students,dive"`
	Students []models.Student    `json:"students" validate:"required_without=Sources"`
	Layout   models.Layout       `json:"layout" validate:"-"`
	Schedule models.ExamSchedule `json:"schedule" validate:"-"`
	Seed     *int64              `json:"seed,omitempty"`
}

// AllocateUploadForm holds the non-file fields of the multipart upload.
type AllocateUploadForm struct {
	Layout   string `form:"layout" binding:"required"`
	Schedule string `form:"schedule" binding:"required"`
	Seed     *int64 `form:"seed"`
}

// AllocationResponse is returned after a plan has been generated.
type AllocationResponse struct {
	PlanID      string                   `json:"planId"`
	GeneratedAt string                   `json:"generatedAt"`
	Seed        int64                    `json:"seed"`
	Stats       models.AllocationStats   `json:"stats"`
	Summary     models.RoomBranchSummary `json:"summary"`
	ExamDates   []string                 `json:"examDates"`
}

// AssignmentListQuery captures GET /seating/plan/assignments query parameters.
type AssignmentListQuery struct {
	Search   string `form:"search"`
	Group    string `form:"group"`
	RoomID   string `form:"room"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SummaryRow is one room/branch occupancy line.
type SummaryRow struct {
	RoomID string `json:"room"`
	Group  string `json:"group"`
	Count  int    `json:"count"`
}

// SummaryResponse wraps both the nested and flattened summary views.
type SummaryResponse struct {
	PlanID  string                   `json:"planId"`
	Summary models.RoomBranchSummary `json:"summary"`
	Rows    []SummaryRow             `json:"rows"`
}

// ExamDatesResponse lists the calendar dates covered by the plan schedule.
type ExamDatesResponse struct {
	Schedule models.ExamSchedule `json:"schedule"`
	Dates    []string            `json:"dates"`
}
