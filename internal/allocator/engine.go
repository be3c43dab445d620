// Package allocator assigns exam seats to students so that neighbouring seats
// in a room hold students from different groups whenever the roster allows it.
//
// Everything here is a pure computation over its inputs: no I/O, no logging
// and no shared state, so concurrent runs are independent.
package allocator

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// Input bundles one allocation request.
type Input struct {
	Students []models.Student
	Layout   models.Layout
	Schedule models.ExamSchedule
	// Seed fixes the shuffles. When nil a fresh seed is drawn.
	Seed *int64
}

// Result is a complete allocation.
type Result struct {
	Report *Report
	Seed   int64
	Stats  models.AllocationStats
}

// Run validates the input, allocates seats and builds the report. Either a
// complete result or an error is returned.
func Run(in Input) (*Result, error) {
	window, err := ParseSchedule(in.Schedule)
	if err != nil {
		return nil, err
	}
	if len(in.Students) == 0 {
		return nil, &NoRecordsError{}
	}
	if err := CheckDuplicateIDs(in.Students); err != nil {
		return nil, err
	}
	seats, err := Flatten(in.Layout)
	if err != nil {
		return nil, err
	}
	if err := ValidateCapacity(len(in.Students), len(seats)); err != nil {
		return nil, err
	}

	seed := drawSeed()
	if in.Seed != nil {
		seed = *in.Seed
	}

	students := make([]models.Student, len(in.Students))
	copy(students, in.Students)
	assignments, walk, err := Assign(students, seats, rand.New(rand.NewSource(seed)))
	if err != nil {
		var incomplete *IncompleteAllocationError
		if errors.As(err, &incomplete) {
			incomplete.Seed = seed
		}
		return nil, err
	}

	report := NewReport(assignments, in.Schedule, window)
	return &Result{
		Report: report,
		Seed:   seed,
		Stats: models.AllocationStats{
			Students:            len(assignments),
			Seats:               len(seats),
			Rooms:               countRooms(seats),
			Groups:              len(partition(students)),
			EmptySeats:          len(seats) - len(assignments),
			SpacerSeats:         walk.SpacerSeats,
			AdjacencyViolations: walk.AdjacencyViolations,
		},
	}, nil
}

func countRooms(seats []models.Seat) int {
	rooms := make(map[string]struct{})
	for _, s := range seats {
		rooms[s.RoomID] = struct{}{}
	}
	return len(rooms)
}

func drawSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return rand.Int63()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
}
