package allocator

import "github.com/noah-isme/exam-seating-api/internal/models"

// BuildSummary counts occupants per room and group.
func BuildSummary(assignments []models.SeatingAssignment) models.RoomBranchSummary {
	summary := make(models.RoomBranchSummary)
	for _, a := range assignments {
		groups, ok := summary[a.RoomID]
		if !ok {
			groups = make(map[string]int)
			summary[a.RoomID] = groups
		}
		groups[a.Group]++
	}
	return summary
}

// SummaryRow is one flattened summary entry.
type SummaryRow struct {
	RoomID string
	Group  string
	Count  int
}

// SummaryRows flattens a summary in room order of first appearance within
// assignments, groups sorted by name.
func SummaryRows(assignments []models.SeatingAssignment) []SummaryRow {
	summary := BuildSummary(assignments)
	var rows []SummaryRow
	for _, sheet := range GroupByRoom(assignments) {
		groups := sortedKeys(summary[sheet.RoomID])
		for _, g := range groups {
			rows = append(rows, SummaryRow{RoomID: sheet.RoomID, Group: g, Count: summary[sheet.RoomID][g]})
		}
	}
	return rows
}
