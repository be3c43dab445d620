package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

func samplePlan() *models.SeatingPlan {
	assign := func(name, id, group, room string, pos int) models.SeatingAssignment {
		return models.SeatingAssignment{
			Student:    models.Student{Name: name, ID: id, Group: group},
			Seat:       models.Seat{BlockID: "A", FloorID: "1", RoomID: room, PositionIndex: pos, OccupantsPerBench: 2},
			BenchLabel: "",
		}
	}
	assignments := []models.SeatingAssignment{
		assign("Asha", "CS01", "CSE", "A101", 1),
		assign("Bilal", "CS02", "CSE", "A102", 1),
		assign("Chen", "EC01", "ECE", "A101", 2),
		assign("Divya", "EC02", "ECE", "A102", 2),
	}
	assignments[0].BenchLabel = "1L"
	assignments[1].BenchLabel = "1L"
	assignments[2].BenchLabel = "1R"
	assignments[3].BenchLabel = "1R"
	return &models.SeatingPlan{
		ID:          "plan-0001-abcdef",
		GeneratedAt: time.Now().UTC(),
		Assignments: assignments,
		Schedule:    sampleSchedule(),
		Summary: models.RoomBranchSummary{
			"A101": {"CSE": 1, "ECE": 1},
			"A102": {"CSE": 1, "ECE": 1},
		},
	}
}

func newExportServiceForTest(t *testing.T) (*ExportService, *planStoreStub) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	plans := &planStoreStub{plan: samplePlan()}
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(plans, store, signer, ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, zap.NewNop(), nil, nil)
	return svc, plans
}

func TestBuildDocumentRoomList(t *testing.T) {
	doc, err := BuildDocument(samplePlan(), models.ExportTypeRoomList)
	require.NoError(t, err)
	assert.Equal(t, roomListHeaders, doc.Headers)
	require.Len(t, doc.Sections, 2)
	assert.Contains(t, doc.Sections[0].Heading, "A101")
	assert.Equal(t, []string{"1", "Asha", "CS01", "CSE", "1L"}, doc.Sections[0].Rows[0])
	assert.Equal(t, []string{"2", "Chen", "EC01", "ECE", "1R"}, doc.Sections[0].Rows[1])
	assert.Equal(t, "2024-05-01 to 2024-05-03, 09:00-12:00", doc.Subtitle)
}

func TestBuildDocumentAttendanceAndSummary(t *testing.T) {
	doc, err := BuildDocument(samplePlan(), models.ExportTypeAttendanceSheet)
	require.NoError(t, err)
	assert.Equal(t, "Booklet Number", doc.Headers[5])
	assert.Equal(t, "Signature", doc.Headers[6])
	assert.Len(t, doc.Sections[1].Rows[0], 7)

	doc, err = BuildDocument(samplePlan(), models.ExportTypeSummary)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, [][]string{
		{"A101", "CSE", "1"}, {"A101", "ECE", "1"},
		{"A102", "CSE", "1"}, {"A102", "ECE", "1"},
	}, doc.Sections[0].Rows)

	_, err = BuildDocument(samplePlan(), models.ExportType("seat_map"))
	assert.Error(t, err)
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	ctx := context.Background()

	job := &models.ExportJob{ID: "job-1", PlanID: "plan-0001-abcdef", Type: models.ExportTypeRoomList, Format: models.ExportFormatCSV}
	result, err := svc.Generate(ctx, job)
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/api/v1/export/")
	assert.Contains(t, result.RelativePath, "room_list_plan-000_job-1.csv")

	claims, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", claims.JobID)

	rc, err := svc.Open(ctx, result.RelativePath)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, "text/csv", svc.ContentType(models.ExportFormatCSV))
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	result, err := svc.Generate(context.Background(), &models.ExportJob{
		ID: "job-2", PlanID: "plan-0001-abcdef", Type: models.ExportTypeAttendanceSheet, Format: models.ExportFormatPDF,
	})
	require.NoError(t, err)

	rc, err := svc.Open(context.Background(), result.RelativePath)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportServiceRejectsReplacedPlan(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	_, err := svc.Generate(context.Background(), &models.ExportJob{
		ID: "job-3", PlanID: "older-plan", Type: models.ExportTypeSummary, Format: models.ExportFormatCSV,
	})
	assert.ErrorContains(t, err, "replaced")

	_, err = svc.Generate(context.Background(), &models.ExportJob{
		ID: "job-4", PlanID: "plan-0001-abcdef", Type: models.ExportTypeSummary, Format: "xlsx",
	})
	assert.Error(t, err)
}
