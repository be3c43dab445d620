package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/allocator"
	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

const (
	defaultMaxUploadBytes = 10 << 20
	rosterFormField       = "roster"
)

type seatingService interface {
	Allocate(ctx context.Context, req dto.AllocateSeatingRequest, actorID string) (*models.SeatingPlan, error)
	AllocateUpload(ctx context.Context, sources []dto.RosterSource, form dto.AllocateUploadForm, actorID string) (*models.SeatingPlan, error)
	Current(ctx context.Context) (*models.SeatingPlan, error)
	Clear(ctx context.Context, actorID string) error
	LookupSeat(ctx context.Context, hallTicket string) (*models.StudentSeatDetails, error)
	ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.SeatingAssignment, *models.Pagination, error)
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
	ExamDates(ctx context.Context) (*dto.ExamDatesResponse, error)
}

// SeatingHandler exposes allocation and plan endpoints.
type SeatingHandler struct {
	service        seatingService
	maxUploadBytes int64
}

// NewSeatingHandler constructs the handler. maxUploadBytes bounds multipart
// request bodies.
func NewSeatingHandler(svc seatingService, maxUploadBytes int64) *SeatingHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &SeatingHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// Allocate godoc
// @Summary Generate seating plan
// @Description Allocate seats for a roster over a layout and replace the current plan
// @Tags Seating
// @Accept json
// @Produce json
// @Param payload body dto.AllocateSeatingRequest true "Allocation request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /seating/allocate [post]
func (h *SeatingHandler) Allocate(c *gin.Context) {
	var req dto.AllocateSeatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}
	actorID, _ := actorFromContext(c)
	plan, err := h.service.Allocate(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, allocationResponse(plan), map[string]interface{}{"seed": plan.Seed})
}

// AllocateUpload godoc
// @Summary Generate seating plan from uploaded rosters
// @Tags Seating
// @Accept mpfd
// @Produce json
// @Param roster formData file true "Roster file (repeatable)"
// @Param layout formData string true "Layout JSON"
// @Param schedule formData string true "Schedule JSON"
// @Param seed formData int false "Random seed"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /seating/allocate/upload [post]
func (h *SeatingHandler) AllocateUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var form dto.AllocateUploadForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes)))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "layout and schedule fields are required"))
		return
	}
	multipartForm, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form"))
		return
	}
	sources, err := readRosterFiles(multipartForm.File[rosterFormField])
	if err != nil {
		response.Error(c, err)
		return
	}

	actorID, _ := actorFromContext(c)
	plan, err := h.service.AllocateUpload(c.Request.Context(), sources, form, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, allocationResponse(plan), map[string]interface{}{"seed": plan.Seed})
}

// Plan godoc
// @Summary Current seating plan
// @Tags Seating
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /seating/plan [get]
func (h *SeatingHandler) Plan(c *gin.Context) {
	plan, err := h.service.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plan)
}

// Assignments godoc
// @Summary List plan assignments
// @Tags Seating
// @Produce json
// @Param search query string false "Name or id substring"
// @Param group query string false "Branch"
// @Param room query string false "Room id"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /seating/plan/assignments [get]
func (h *SeatingHandler) Assignments(c *gin.Context) {
	var query dto.AssignmentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.ListAssignments(c.Request.Context(), models.AssignmentFilter{
		Search:   query.Search,
		Group:    query.Group,
		RoomID:   query.RoomID,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Summary godoc
// @Summary Room and branch occupancy
// @Tags Seating
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seating/plan/summary [get]
func (h *SeatingHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Dates godoc
// @Summary Exam dates of the current plan
// @Tags Seating
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seating/plan/dates [get]
func (h *SeatingHandler) Dates(c *gin.Context) {
	dates, err := h.service.ExamDates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dates)
}

// Clear godoc
// @Summary Delete the current plan
// @Tags Seating
// @Success 204
// @Router /seating/plan [delete]
func (h *SeatingHandler) Clear(c *gin.Context) {
	actorID, _ := actorFromContext(c)
	if err := h.service.Clear(c.Request.Context(), actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// LookupSeat godoc
// @Summary Find a student's seat
// @Description Public lookup by hall ticket number
// @Tags Students
// @Produce json
// @Param hallTicket path string true "Hall ticket number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /seats/{hallTicket} [get]
func (h *SeatingHandler) LookupSeat(c *gin.Context) {
	details, err := h.service.LookupSeat(c.Request.Context(), c.Param("hallTicket"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, details)
}

func allocationResponse(plan *models.SeatingPlan) dto.AllocationResponse {
	return dto.AllocationResponse{
		PlanID:      plan.ID,
		GeneratedAt: plan.GeneratedAt.Format(time.RFC3339),
		Seed:        plan.Seed,
		Stats:       plan.Stats,
		Summary:     plan.Summary,
		ExamDates:   planDates(plan),
	}
}

func planDates(plan *models.SeatingPlan) []string {
	window, err := allocator.ParseSchedule(plan.Schedule)
	if err != nil {
		return []string{}
	}
	return window.DateStrings()
}

func readRosterFiles(files []*multipart.FileHeader) ([]dto.RosterSource, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one roster file is required")
	}
	sources := make([]dto.RosterSource, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read roster "+fh.Filename)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read roster "+fh.Filename)
		}
		sources = append(sources, dto.RosterSource{Name: fh.Filename, Text: string(data)})
	}
	return sources, nil
}
