package allocator

import "fmt"

// SchemaError reports a required roster column that no header matched.
type SchemaError struct {
	Source string
	Field  string
}

func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("roster is missing required column %q", e.Field)
	}
	return fmt.Sprintf("roster %s is missing required column %q", e.Source, e.Field)
}

// NoRecordsError reports that normalization produced an empty roster.
type NoRecordsError struct{}

func (e *NoRecordsError) Error() string {
	return "roster contains no student records"
}

// LayoutError names a room whose declaration cannot produce seats.
type LayoutError struct {
	Room   string
	Reason string
}

func (e *LayoutError) Error() string {
	if e.Room == "" {
		return "invalid layout: " + e.Reason
	}
	return fmt.Sprintf("invalid layout in room %q: %s", e.Room, e.Reason)
}

// CapacityError reports a roster larger than the declared seats.
type CapacityError struct {
	Required  int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats: %d students require seats but only %d are available", e.Required, e.Available)
}

// IncompleteAllocationError signals that the allocator finished without
// seating every student. It indicates a defect, never bad input.
type IncompleteAllocationError struct {
	Seated int
	Total  int
	Seats  int
	Seed   int64
}

func (e *IncompleteAllocationError) Error() string {
	return fmt.Sprintf("allocation incomplete: seated %d of %d students", e.Seated, e.Total)
}

// DuplicateIDError reports two roster entries sharing an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate student id %q", e.ID)
}

// ScheduleError reports an unusable exam schedule.
type ScheduleError struct {
	Reason string
}

func (e *ScheduleError) Error() string {
	return "invalid schedule: " + e.Reason
}
