package service

import (
	"fmt"
	"strconv"

	"github.com/noah-isme/exam-seating-api/internal/allocator"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/export"
)

var (
	roomListHeaders   = []string{"S.No", "Name", "Roll No", "Branch", "Seat"}
	roomListWeights   = []float64{0.6, 3, 2, 2, 1}
	attendanceHeaders = []string{"S.No", "Name", "Roll No", "Branch", "Seat", "Booklet Number", "Signature"}
	attendanceWeights = []float64{0.6, 2.6, 1.6, 1.4, 0.8, 1.6, 2}
	summaryHeaders    = []string{"Room", "Branch", "Student Count"}
)

// BuildDocument renders a plan into the printable document of the given type.
func BuildDocument(plan *models.SeatingPlan, exportType models.ExportType) (export.Document, error) {
	if plan == nil {
		return export.Document{}, fmt.Errorf("plan is nil")
	}
	subtitle := examWindowLabel(plan.Schedule)

	switch exportType {
	case models.ExportTypeRoomList, models.ExportTypeAttendanceSheet:
		doc := export.Document{
			Title:        "Seating Arrangement",
			Subtitle:     subtitle,
			Headers:      roomListHeaders,
			Weights:      roomListWeights,
			SectionLabel: "Room",
		}
		if exportType == models.ExportTypeAttendanceSheet {
			doc.Title = "Attendance Sheet"
			doc.Headers = attendanceHeaders
			doc.Weights = attendanceWeights
		}
		for _, sheet := range allocator.GroupByRoom(plan.Assignments) {
			section := export.Section{Heading: fmt.Sprintf("Block %s / Floor %s / Room %s", sheet.BlockID, sheet.FloorID, sheet.RoomID)}
			for i, a := range sheet.Assignments {
				row := []string{strconv.Itoa(i + 1), a.Name, a.ID, a.Group, a.BenchLabel}
				if exportType == models.ExportTypeAttendanceSheet {
					row = append(row, "", "")
				}
				section.Rows = append(section.Rows, row)
			}
			doc.Sections = append(doc.Sections, section)
		}
		return doc, nil
	case models.ExportTypeSummary:
		section := export.Section{Heading: "Room and branch occupancy"}
		for _, r := range allocator.SummaryRows(plan.Assignments) {
			section.Rows = append(section.Rows, []string{r.RoomID, r.Group, strconv.Itoa(r.Count)})
		}
		return export.Document{
			Title:    "Branch Summary",
			Subtitle: subtitle,
			Headers:  summaryHeaders,
			Sections: []export.Section{section},
		}, nil
	default:
		return export.Document{}, fmt.Errorf("unsupported export type %s", exportType)
	}
}

func examWindowLabel(schedule models.ExamSchedule) string {
	if schedule.StartDate == "" {
		return ""
	}
	label := schedule.StartDate
	if schedule.EndDate != "" && schedule.EndDate != schedule.StartDate {
		label += " to " + schedule.EndDate
	}
	if schedule.DailyStartTime != "" && schedule.DailyEndTime != "" {
		label += fmt.Sprintf(", %s-%s", schedule.DailyStartTime, schedule.DailyEndTime)
	}
	return label
}
