package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/allocator"
	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/repository"
	"github.com/noah-isme/exam-seating-api/pkg/broker"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

const (
	defaultAssignmentPageSize = 50
	maxAssignmentPageSize     = 200
)

type planStore interface {
	Save(ctx context.Context, plan *models.SeatingPlan) error
	Load(ctx context.Context) (*models.SeatingPlan, error)
	Clear(ctx context.Context) error
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type seatingMetrics interface {
	ObserveAllocation(outcome string, stats models.AllocationStats, duration time.Duration)
	ObservePlanStore(operation string, duration time.Duration)
	ResetPlan()
}

// SeatingConfig tunes allocation limits.
type SeatingConfig struct {
	MaxRoster int
}

// SeatingService runs the allocation engine and manages the current plan.
type SeatingService struct {
	store      planStore
	events     eventPublisher
	metrics    seatingMetrics
	normalizer *allocator.Normalizer
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        SeatingConfig
}

// NewSeatingService constructs the seating service. events and metrics are optional.
func NewSeatingService(store planStore, events eventPublisher, metrics seatingMetrics, validate *validator.Validate, logger *zap.Logger, cfg SeatingConfig) *SeatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if events == nil {
		events = broker.NopPublisher{}
	}
	return &SeatingService{
		store:      store,
		events:     events,
		metrics:    metrics,
		normalizer: allocator.NewNormalizer(nil),
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Allocate normalizes the roster, runs the engine and replaces the current plan.
func (s *SeatingService) Allocate(ctx context.Context, req dto.AllocateSeatingRequest, actorID string) (*models.SeatingPlan, error) {
	started := time.Now()
	if err := s.validator.Struct(req); err != nil {
		s.observe(allocator.Input{}, nil, started, err)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}

	students, err := s.normalize(req)
	if err != nil {
		s.observe(allocator.Input{}, nil, started, err)
		return nil, s.translate(err, allocator.Input{})
	}
	if s.cfg.MaxRoster > 0 && len(students) > s.cfg.MaxRoster {
		err := appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("roster has %d students, the limit is %d", len(students), s.cfg.MaxRoster))
		s.observe(allocator.Input{}, nil, started, err)
		return nil, err
	}

	in := allocator.Input{Students: students, Layout: req.Layout, Schedule: req.Schedule, Seed: req.Seed}
	result, err := allocator.Run(in)
	s.observe(in, result, started, err)
	if err != nil {
		return nil, s.translate(err, in)
	}

	plan := &models.SeatingPlan{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: actorID,
		Seed:        result.Seed,
		Assignments: result.Report.Assignments(),
		Schedule:    result.Report.Schedule(),
		Summary:     result.Report.Summary(),
		Stats:       result.Stats,
	}
	if err := s.save(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist seating plan")
	}

	s.logger.Info("seating plan generated",
		zap.String("plan_id", plan.ID),
		zap.Int64("seed", plan.Seed),
		zap.Int("students", plan.Stats.Students),
		zap.Int("rooms", plan.Stats.Rooms),
		zap.Int("spacer_seats", plan.Stats.SpacerSeats),
		zap.Int("adjacency_violations", plan.Stats.AdjacencyViolations),
	)

	event := models.PlanGeneratedEvent{
		PlanID:      plan.ID,
		Students:    plan.Stats.Students,
		Rooms:       plan.Stats.Rooms,
		StartDate:   plan.Schedule.StartDate,
		EndDate:     plan.Schedule.EndDate,
		GeneratedBy: actorID,
		GeneratedAt: plan.GeneratedAt,
	}
	if err := s.events.Publish(ctx, broker.EventPlanGenerated, event); err != nil {
		s.logger.Warn("failed to publish plan event", zap.String("plan_id", plan.ID), zap.Error(err))
	}
	return plan, nil
}

// AllocateUpload is the multipart variant of Allocate: layout and schedule
// arrive as JSON form fields next to the roster files.
func (s *SeatingService) AllocateUpload(ctx context.Context, sources []dto.RosterSource, form dto.AllocateUploadForm, actorID string) (*models.SeatingPlan, error) {
	if len(sources) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one roster file is required")
	}
	req := dto.AllocateSeatingRequest{Sources: sources, Seed: form.Seed}
	if err := json.Unmarshal([]byte(form.Layout), &req.Layout); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLayoutInvalid.Code, appErrors.ErrLayoutInvalid.Status, "layout field is not valid JSON")
	}
	if err := json.Unmarshal([]byte(form.Schedule), &req.Schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrScheduleInvalid.Code, appErrors.ErrScheduleInvalid.Status, "schedule field is not valid JSON")
	}
	return s.Allocate(ctx, req, actorID)
}

// Current returns the latest plan.
func (s *SeatingService) Current(ctx context.Context) (*models.SeatingPlan, error) {
	started := time.Now()
	plan, err := s.store.Load(ctx)
	if s.metrics != nil {
		s.metrics.ObservePlanStore("load", time.Since(started))
	}
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no seating plan has been generated yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seating plan")
	}
	return plan, nil
}

// Clear deletes the current plan. Clearing an empty store succeeds.
func (s *SeatingService) Clear(ctx context.Context, actorID string) error {
	started := time.Now()
	err := s.store.Clear(ctx)
	if s.metrics != nil {
		s.metrics.ObservePlanStore("clear", time.Since(started))
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear seating plan")
	}
	if s.metrics != nil {
		s.metrics.ResetPlan()
	}
	s.logger.Info("seating plan cleared", zap.String("faculty_id", actorID))
	event := models.PlanClearedEvent{ClearedBy: actorID, ClearedAt: time.Now().UTC()}
	if err := s.events.Publish(ctx, broker.EventPlanCleared, event); err != nil {
		s.logger.Warn("failed to publish plan cleared event", zap.Error(err))
	}
	return nil
}

// LookupSeat finds the seat of one student by hall ticket (student id).
func (s *SeatingService) LookupSeat(ctx context.Context, hallTicket string) (*models.StudentSeatDetails, error) {
	key := models.NormalizeID(hallTicket)
	if key == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hall ticket number is required")
	}
	plan, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range plan.Assignments {
		if a.Key() != key {
			continue
		}
		return &models.StudentSeatDetails{
			SeatingAssignment: a,
			Schedule:          plan.Schedule,
			ExamDates:         examDates(plan.Schedule),
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no seat found for this hall ticket")
}

// ListAssignments returns a filtered page of the current plan in id order.
func (s *SeatingService) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.SeatingAssignment, *models.Pagination, error) {
	plan, err := s.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultAssignmentPageSize
	}
	if filter.PageSize > maxAssignmentPageSize {
		filter.PageSize = maxAssignmentPageSize
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	group := strings.TrimSpace(filter.Group)
	room := strings.TrimSpace(filter.RoomID)

	matched := make([]models.SeatingAssignment, 0, len(plan.Assignments))
	for _, a := range plan.Assignments {
		if group != "" && !strings.EqualFold(a.Group, group) {
			continue
		}
		if room != "" && a.RoomID != room {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Name), search) && !strings.Contains(strings.ToLower(a.ID), search) {
			continue
		}
		matched = append(matched, a)
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(matched)}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return []models.SeatingAssignment{}, pagination, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], pagination, nil
}

// Summary returns the room/branch occupancy of the current plan.
func (s *SeatingService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	plan, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	rows := allocator.SummaryRows(plan.Assignments)
	out := &dto.SummaryResponse{PlanID: plan.ID, Summary: plan.Summary, Rows: make([]dto.SummaryRow, 0, len(rows))}
	for _, r := range rows {
		out.Rows = append(out.Rows, dto.SummaryRow{RoomID: r.RoomID, Group: r.Group, Count: r.Count})
	}
	return out, nil
}

// ExamDates lists the calendar dates covered by the current plan.
func (s *SeatingService) ExamDates(ctx context.Context) (*dto.ExamDatesResponse, error) {
	plan, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ExamDatesResponse{Schedule: plan.Schedule, Dates: examDates(plan.Schedule)}, nil
}

func (s *SeatingService) normalize(req dto.AllocateSeatingRequest) ([]models.Student, error) {
	if len(req.Sources) > 0 {
		sources := make([]allocator.Source, 0, len(req.Sources))
		for i, src := range req.Sources {
			name := src.Name
			if name == "" {
				name = fmt.Sprintf("source %d", i+1)
			}
			sources = append(sources, allocator.Source{Name: name, Text: src.Text})
		}
		return s.normalizer.Normalize(sources)
	}
	return s.normalizer.NormalizeRecords(req.Students)
}

func (s *SeatingService) save(ctx context.Context, plan *models.SeatingPlan) error {
	started := time.Now()
	err := s.store.Save(ctx, plan)
	if s.metrics != nil {
		s.metrics.ObservePlanStore("save", time.Since(started))
	}
	return err
}

func (s *SeatingService) observe(in allocator.Input, result *allocator.Result, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	var incomplete *allocator.IncompleteAllocationError
	switch {
	case err == nil && result != nil:
		s.metrics.ObserveAllocation(OutcomeSuccess, result.Stats, time.Since(started))
	case errors.As(err, &incomplete):
		s.metrics.ObserveAllocation(OutcomeFailed, models.AllocationStats{}, time.Since(started))
	default:
		s.metrics.ObserveAllocation(OutcomeRejected, models.AllocationStats{}, time.Since(started))
	}
}

// translate maps engine errors to API errors with user-facing messages.
func (s *SeatingService) translate(err error, in allocator.Input) error {
	var (
		schemaErr     *allocator.SchemaError
		noRecordsErr  *allocator.NoRecordsError
		layoutErr     *allocator.LayoutError
		capacityErr   *allocator.CapacityError
		duplicateErr  *allocator.DuplicateIDError
		scheduleErr   *allocator.ScheduleError
		incompleteErr *allocator.IncompleteAllocationError
	)
	switch {
	case errors.As(err, &schemaErr):
		return appErrors.Wrap(err, appErrors.ErrRosterSchema.Code, appErrors.ErrRosterSchema.Status, schemaErr.Error())
	case errors.As(err, &noRecordsErr):
		return appErrors.Wrap(err, appErrors.ErrNoRecords.Code, appErrors.ErrNoRecords.Status, appErrors.ErrNoRecords.Message)
	case errors.As(err, &layoutErr):
		return appErrors.Wrap(err, appErrors.ErrLayoutInvalid.Code, appErrors.ErrLayoutInvalid.Status, layoutErr.Error())
	case errors.As(err, &capacityErr):
		return appErrors.Wrap(err, appErrors.ErrCapacityExceeded.Code, appErrors.ErrCapacityExceeded.Status,
			fmt.Sprintf("not enough seats: %d students but only %d seats", capacityErr.Required, capacityErr.Available))
	case errors.As(err, &duplicateErr):
		return appErrors.Wrap(err, appErrors.ErrDuplicateStudent.Code, appErrors.ErrDuplicateStudent.Status, duplicateErr.Error())
	case errors.As(err, &scheduleErr):
		return appErrors.Wrap(err, appErrors.ErrScheduleInvalid.Code, appErrors.ErrScheduleInvalid.Status, scheduleErr.Error())
	case errors.As(err, &incompleteErr):
		s.logger.Error("allocation left students unseated",
			zap.Int("seated", incompleteErr.Seated),
			zap.Int("total", incompleteErr.Total),
			zap.Int("seats", incompleteErr.Seats),
			zap.Int64("seed", incompleteErr.Seed),
			zap.Bool("seed_supplied", in.Seed != nil),
			zap.Int("blocks", len(in.Layout.Blocks)),
			zap.Error(err),
		)
		return appErrors.Clone(appErrors.ErrInternal, "seat allocation failed")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "seat allocation failed")
	}
}

func examDates(schedule models.ExamSchedule) []string {
	window, err := allocator.ParseSchedule(schedule)
	if err != nil {
		return []string{}
	}
	return window.DateStrings()
}
