package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SeatingAssignment binds one student to one seat.
type SeatingAssignment struct {
	Student
	Seat
	BenchLabel string `json:"benchLabel"`
}

// ExamSchedule is descriptive metadata attached to a generated plan. Dates use
// 2006-01-02, times use 15:04.
type ExamSchedule struct {
	StartDate               string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate                 string `json:"endDate" validate:"required,datetime=2006-01-02"`
	DailyStartTime          string `json:"dailyStartTime" validate:"required,datetime=15:04"`
	DailyEndTime            string `json:"dailyEndTime" validate:"required,datetime=15:04"`
	ReuseSamePlanAcrossDays bool   `json:"reuseSamePlanAcrossDays"`
}

// RoomBranchSummary maps room id to group to occupant count.
type RoomBranchSummary map[string]map[string]int

// AllocationStats reports how a plan was produced.
type AllocationStats struct {
	Students            int `json:"students"`
	Seats               int `json:"seats"`
	Rooms               int `json:"rooms"`
	Groups              int `json:"groups"`
	EmptySeats          int `json:"emptySeats"`
	SpacerSeats         int `json:"spacerSeats"`
	AdjacencyViolations int `json:"adjacencyViolations"`
}

// SeatingPlan is the persisted result of one allocation run.
type SeatingPlan struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generatedAt"`
	GeneratedBy string              `json:"generatedBy,omitempty"`
	Seed        int64               `json:"seed"`
	Assignments []SeatingAssignment `json:"assignments"`
	Schedule    ExamSchedule        `json:"schedule"`
	Summary     RoomBranchSummary   `json:"summary"`
	Stats       AllocationStats     `json:"stats"`
}

// Value marshals the plan to JSON for persistence.
func (p SeatingPlan) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal seating plan: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON payload into the plan.
func (p *SeatingPlan) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*p = SeatingPlan{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for SeatingPlan", value)
	}
	if len(data) == 0 {
		*p = SeatingPlan{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal seating plan: %w", err)
	}
	return nil
}

// StudentSeatDetails is what a student sees when looking up their seat.
type StudentSeatDetails struct {
	SeatingAssignment
	Schedule  ExamSchedule `json:"schedule"`
	ExamDates []string     `json:"examDates"`
}

// AssignmentFilter narrows plan listings.
type AssignmentFilter struct {
	Search   string
	Group    string
	RoomID   string
	Page     int
	PageSize int
}
