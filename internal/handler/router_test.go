package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type tokenStub struct{}

func (tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	switch token {
	case "admin":
		return &models.JWTClaims{FacultyID: "F001", Role: models.RoleAdmin}, nil
	case "faculty":
		return &models.JWTClaims{FacultyID: "F002", Role: models.RoleFaculty}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type seatingServiceMock struct {
	plan       *models.SeatingPlan
	err        error
	lastReq    dto.AllocateSeatingRequest
	lastActor  string
	sources    []dto.RosterSource
	form       dto.AllocateUploadForm
	lastFilter models.AssignmentFilter
	cleared    bool
}

func (m *seatingServiceMock) Allocate(ctx context.Context, req dto.AllocateSeatingRequest, actorID string) (*models.SeatingPlan, error) {
	m.lastReq, m.lastActor = req, actorID
	return m.plan, m.err
}

func (m *seatingServiceMock) AllocateUpload(ctx context.Context, sources []dto.RosterSource, form dto.AllocateUploadForm, actorID string) (*models.SeatingPlan, error) {
	m.sources, m.form, m.lastActor = sources, form, actorID
	return m.plan, m.err
}

func (m *seatingServiceMock) Current(ctx context.Context) (*models.SeatingPlan, error) {
	return m.plan, m.err
}

func (m *seatingServiceMock) Clear(ctx context.Context, actorID string) error {
	m.cleared = true
	return m.err
}

func (m *seatingServiceMock) LookupSeat(ctx context.Context, hallTicket string) (*models.StudentSeatDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.plan.Assignments {
		if a.Key() == models.NormalizeID(hallTicket) {
			return &models.StudentSeatDetails{SeatingAssignment: a, Schedule: m.plan.Schedule}, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no seat found for this hall ticket")
}

func (m *seatingServiceMock) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.SeatingAssignment, *models.Pagination, error) {
	m.lastFilter = filter
	return m.plan.Assignments, &models.Pagination{Page: 1, PageSize: 50, TotalCount: len(m.plan.Assignments)}, m.err
}

func (m *seatingServiceMock) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	return &dto.SummaryResponse{PlanID: m.plan.ID, Summary: m.plan.Summary}, m.err
}

func (m *seatingServiceMock) ExamDates(ctx context.Context) (*dto.ExamDatesResponse, error) {
	return &dto.ExamDatesResponse{Schedule: m.plan.Schedule, Dates: []string{"2024-05-01"}}, m.err
}

type authServiceMock struct {
	loginErr error
	replaced *dto.ReplaceDirectoryRequest
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{AccessToken: "admin", ExpiresIn: 3600, Faculty: models.FacultyMember{ID: req.FacultyID}}, nil
}

func (m *authServiceMock) ReplaceDirectory(ctx context.Context, req dto.ReplaceDirectoryRequest, actorID string) (*dto.DirectoryResponse, error) {
	m.replaced = &req
	return &dto.DirectoryResponse{Faculty: req.Faculty}, nil
}

type exportServiceMock struct {
	created  *dto.ExportJobResponse
	status   *dto.ExportStatusResponse
	err      error
	download *service.ExportDownload
	role     models.UserRole
}

func (m *exportServiceMock) CreateJob(ctx context.Context, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error) {
	return m.created, m.err
}

func (m *exportServiceMock) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error) {
	m.role = role
	return m.status, m.err
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	return m.download, nil
}

type routerFixture struct {
	engine  *gin.Engine
	seating *seatingServiceMock
	auth    *authServiceMock
	exports *exportServiceMock
}

func handlerPlan() *models.SeatingPlan {
	return &models.SeatingPlan{
		ID:          "plan-1",
		GeneratedAt: time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC),
		Seed:        42,
		Assignments: []models.SeatingAssignment{
			{Student: models.Student{Name: "Asha", ID: "CS01", Group: "CSE"}, Seat: models.Seat{RoomID: "A101", PositionIndex: 1}, BenchLabel: "1L"},
			{Student: models.Student{Name: "Chen", ID: "EC01", Group: "ECE"}, Seat: models.Seat{RoomID: "A101", PositionIndex: 2}, BenchLabel: "1R"},
		},
		Schedule: models.ExamSchedule{StartDate: "2024-05-01", EndDate: "2024-05-02", DailyStartTime: "09:00", DailyEndTime: "12:00"},
		Summary:  models.RoomBranchSummary{"A101": {"CSE": 1, "ECE": 1}},
		Stats:    models.AllocationStats{Students: 2, Seats: 4, Rooms: 1},
	}
}

func newRouterFixture(t *testing.T, withExports bool) routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := routerFixture{
		seating: &seatingServiceMock{plan: handlerPlan()},
		auth:    &authServiceMock{},
		exports: &exportServiceMock{},
	}
	handlers := Handlers{
		Auth:    NewAuthHandler(f.auth),
		Seating: NewSeatingHandler(f.seating, 1<<20),
		Metrics: NewMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		})),
		Tokens: tokenStub{},
	}
	if withExports {
		handlers.Export = NewExportHandler(f.exports)
	}
	f.engine = NewRouter(RouterConfig{APIPrefix: "/api/v1"}, handlers)
	return f
}

func doRequest(r http.Handler, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRouterLogin(t *testing.T) {
	f := newRouterFixture(t, false)

	w := doRequest(f.engine, http.MethodPost, "/api/v1/auth/login", "", jsonBody(t, map[string]string{"facultyId": "F001", "secureKey": "k"}), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "admin", data["access_token"])

	f.auth.loginErr = appErrors.Clone(appErrors.ErrInvalidCredentials, "secure key mismatch")
	w = doRequest(f.engine, http.MethodPost, "/api/v1/auth/login", "", jsonBody(t, map[string]string{"facultyId": "F001", "secureKey": "x"}), "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "secure key mismatch")

	w = doRequest(f.engine, http.MethodPost, "/api/v1/auth/login", "", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterAllocateRequiresAdmin(t *testing.T) {
	f := newRouterFixture(t, false)
	payload := map[string]interface{}{
		"students": []map[string]string{{"name": "Asha", "id": "CS01", "group": "CSE"}},
		"layout":   map[string]interface{}{"blocks": []interface{}{}},
		"schedule": map[string]string{"startDate": "2024-05-01"},
		"seed":     7,
	}

	assert.Equal(t, http.StatusUnauthorized, doRequest(f.engine, http.MethodPost, "/api/v1/seating/allocate", "", jsonBody(t, payload), "application/json").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(f.engine, http.MethodPost, "/api/v1/seating/allocate", "faculty", jsonBody(t, payload), "application/json").Code)

	w := doRequest(f.engine, http.MethodPost, "/api/v1/seating/allocate", "admin", jsonBody(t, payload), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "F001", f.seating.lastActor)
	require.NotNil(t, f.seating.lastReq.Seed)
	assert.Equal(t, int64(7), *f.seating.lastReq.Seed)

	env := decodeEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "plan-1", data["planId"])
	assert.Equal(t, []interface{}{"2024-05-01", "2024-05-02"}, data["examDates"])
	assert.Equal(t, float64(42), env["meta"].(map[string]interface{})["seed"])
}

func TestRouterAllocateErrorMapping(t *testing.T) {
	f := newRouterFixture(t, false)
	f.seating.err = appErrors.Clone(appErrors.ErrCapacityExceeded, "not enough seats: 5 students but only 4 seats")
	w := doRequest(f.engine, http.MethodPost, "/api/v1/seating/allocate", "admin", jsonBody(t, map[string]interface{}{}), "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)
	errBody := decodeEnvelope(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "CAPACITY_EXCEEDED", errBody["code"])
}

func TestRouterAllocateUpload(t *testing.T) {
	f := newRouterFixture(t, false)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, name := range []string{"cse.csv", "ece.csv"} {
		part, err := mw.CreateFormFile("roster", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("name,id,group\nAsha,CS01,CSE\n"))
	}
	require.NoError(t, mw.WriteField("layout", `{"blocks":[]}`))
	require.NoError(t, mw.WriteField("schedule", `{"startDate":"2024-05-01"}`))
	require.NoError(t, mw.WriteField("seed", "11"))
	require.NoError(t, mw.Close())

	w := doRequest(f.engine, http.MethodPost, "/api/v1/seating/allocate/upload", "admin", body, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, f.seating.sources, 2)
	assert.Equal(t, "cse.csv", f.seating.sources[0].Name)
	assert.Contains(t, f.seating.sources[1].Text, "Asha")
	require.NotNil(t, f.seating.form.Seed)
	assert.Equal(t, int64(11), *f.seating.form.Seed)

	body.Reset()
	mw = multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("layout", `{}`))
	require.NoError(t, mw.WriteField("schedule", `{}`))
	require.NoError(t, mw.Close())
	w = doRequest(f.engine, http.MethodPost, "/api/v1/seating/allocate/upload", "admin", body, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterPlanReads(t *testing.T) {
	f := newRouterFixture(t, false)

	w := doRequest(f.engine, http.MethodGet, "/api/v1/seating/plan", "faculty", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = doRequest(f.engine, http.MethodGet, "/api/v1/seating/plan/assignments?search=ash&group=CSE&room=A101&page=2&page_size=5", "faculty", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AssignmentFilter{Search: "ash", Group: "CSE", RoomID: "A101", Page: 2, PageSize: 5}, f.seating.lastFilter)
	pagination := decodeEnvelope(t, w)["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["total_count"])

	assert.Equal(t, http.StatusOK, doRequest(f.engine, http.MethodGet, "/api/v1/seating/plan/summary", "faculty", nil, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(f.engine, http.MethodGet, "/api/v1/seating/plan/dates", "admin", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(f.engine, http.MethodGet, "/api/v1/seating/plan/assignments?page=abc", "admin", nil, "").Code)

	f.seating.err = appErrors.Clone(appErrors.ErrNotFound, "no seating plan has been generated yet")
	assert.Equal(t, http.StatusNotFound, doRequest(f.engine, http.MethodGet, "/api/v1/seating/plan", "admin", nil, "").Code)
}

func TestRouterClearPlan(t *testing.T) {
	f := newRouterFixture(t, false)
	assert.Equal(t, http.StatusForbidden, doRequest(f.engine, http.MethodDelete, "/api/v1/seating/plan", "faculty", nil, "").Code)
	assert.False(t, f.seating.cleared)
	assert.Equal(t, http.StatusNoContent, doRequest(f.engine, http.MethodDelete, "/api/v1/seating/plan", "admin", nil, "").Code)
	assert.True(t, f.seating.cleared)
}

func TestRouterPublicSeatLookup(t *testing.T) {
	f := newRouterFixture(t, false)

	w := doRequest(f.engine, http.MethodGet, "/api/v1/seats/ec01", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Chen", data["name"])
	assert.Equal(t, "A101", data["room"])
	assert.Equal(t, "1R", data["benchLabel"])

	assert.Equal(t, http.StatusNotFound, doRequest(f.engine, http.MethodGet, "/api/v1/seats/ZZ01", "", nil, "").Code)
}

func TestRouterFacultyDirectory(t *testing.T) {
	f := newRouterFixture(t, false)
	payload := map[string]interface{}{"secureKey": "a-long-key", "faculty": []map[string]string{{"id": "F009"}}}

	assert.Equal(t, http.StatusForbidden, doRequest(f.engine, http.MethodPut, "/api/v1/faculty/directory", "faculty", jsonBody(t, payload), "application/json").Code)
	w := doRequest(f.engine, http.MethodPut, "/api/v1/faculty/directory", "admin", jsonBody(t, payload), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.auth.replaced)
	assert.Equal(t, "F009", f.auth.replaced.Faculty[0].ID)
}

func TestRouterExports(t *testing.T) {
	f := newRouterFixture(t, true)
	url := "/api/v1/export/good"
	f.exports.created = &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued}
	f.exports.status = &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, ResultURL: &url}
	f.exports.download = &service.ExportDownload{
		Reader:      io.NopCloser(strings.NewReader("Room,S.No\n")),
		Filename:    "room_list.csv",
		ContentType: "text/csv",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	w := doRequest(f.engine, http.MethodPost, "/api/v1/seating/plan/exports", "faculty", jsonBody(t, dto.ExportRequest{Type: models.ExportTypeRoomList, Format: models.ExportFormatCSV}), "application/json")
	require.Equal(t, http.StatusAccepted, w.Code)

	w = doRequest(f.engine, http.MethodGet, "/api/v1/seating/exports/job-1", "faculty", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleFaculty, f.exports.role)

	w = doRequest(f.engine, http.MethodGet, url, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "room_list.csv")
	assert.Equal(t, "Room,S.No\n", w.Body.String())

	assert.Equal(t, http.StatusForbidden, doRequest(f.engine, http.MethodGet, "/api/v1/export/bad", "", nil, "").Code)

	f.exports.err = errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, doRequest(f.engine, http.MethodGet, "/api/v1/seating/exports/job-1", "admin", nil, "").Code)
}

func TestRouterExportsDisabled(t *testing.T) {
	f := newRouterFixture(t, false)
	assert.Equal(t, http.StatusNotFound, doRequest(f.engine, http.MethodGet, "/api/v1/export/good", "", nil, "").Code)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t, false)
	assert.Equal(t, http.StatusOK, doRequest(f.engine, http.MethodGet, "/health", "", nil, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(f.engine, http.MethodGet, "/ready", "", nil, "").Code)
	w := doRequest(f.engine, http.MethodGet, "/metrics", "", nil, "")
	assert.Contains(t, w.Body.String(), "# metrics")
}

func TestMetricsHandlerReadyReportsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
		return errors.New("connection refused")
	}})
	r := gin.New()
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)

	w := doRequest(r, http.MethodGet, "/ready", "", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, http.MethodGet, "/metrics", "", nil, "").Code)
}
