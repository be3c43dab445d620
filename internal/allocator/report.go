package allocator

import (
	"sort"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// Report is the engine output: assignments ordered by student id together
// with the schedule they apply to.
type Report struct {
	assignments []models.SeatingAssignment
	schedule    models.ExamSchedule
	window      ExamWindow
}

// NewReport orders a copy of assignments by student id.
func NewReport(assignments []models.SeatingAssignment, schedule models.ExamSchedule, window ExamWindow) *Report {
	sorted := make([]models.SeatingAssignment, len(assignments))
	copy(sorted, assignments)
	SortByID(sorted)
	return &Report{assignments: sorted, schedule: schedule, window: window}
}

// SortByID orders assignments by student id, lexicographically.
func SortByID(assignments []models.SeatingAssignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].ID < assignments[j].ID
	})
}

// Assignments returns a copy of the ordered assignments.
func (r *Report) Assignments() []models.SeatingAssignment {
	out := make([]models.SeatingAssignment, len(r.assignments))
	copy(out, r.assignments)
	return out
}

// Schedule returns the schedule the plan was generated for.
func (r *Report) Schedule() models.ExamSchedule {
	return r.schedule
}

// Summary rebuilds the room/group occupancy counts.
func (r *Report) Summary() models.RoomBranchSummary {
	return BuildSummary(r.assignments)
}

// ExamDates enumerates the exam days.
func (r *Report) ExamDates() []string {
	return r.window.DateStrings()
}

// RoomSheet lists the occupants of one room in seat order.
type RoomSheet struct {
	BlockID     string
	FloorID     string
	RoomID      string
	Assignments []models.SeatingAssignment
}

// GroupByRoom splits assignments per room. Rooms keep the order in which they
// are first met after sorting by block, floor and room; occupants run by
// position.
func GroupByRoom(assignments []models.SeatingAssignment) []RoomSheet {
	ordered := make([]models.SeatingAssignment, len(assignments))
	copy(ordered, assignments)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.BlockID != b.BlockID {
			return a.BlockID < b.BlockID
		}
		if a.FloorID != b.FloorID {
			return a.FloorID < b.FloorID
		}
		if a.RoomID != b.RoomID {
			return a.RoomID < b.RoomID
		}
		return a.PositionIndex < b.PositionIndex
	})

	var sheets []RoomSheet
	for _, a := range ordered {
		if n := len(sheets); n == 0 || sheets[n-1].RoomID != a.RoomID {
			sheets = append(sheets, RoomSheet{BlockID: a.BlockID, FloorID: a.FloorID, RoomID: a.RoomID})
		}
		last := &sheets[len(sheets)-1]
		last.Assignments = append(last.Assignments, a)
	}
	return sheets
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
