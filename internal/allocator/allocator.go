package allocator

import (
	"math/rand"
	"strconv"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// Stats describes how the seat walk went.
type Stats struct {
	SpacerSeats         int
	AdjacencyViolations int
}

type groupQueue struct {
	name     string
	students []models.Student
}

func (q *groupQueue) pop() models.Student {
	head := q.students[0]
	q.students = q.students[1:]
	return head
}

// Assign places every student on a seat of the ordered seat list. Groups are
// interleaved so that consecutive positions of one room hold different groups
// whenever the remaining roster allows it; the walk never strands a student
// while seats remain. rng drives both shuffles so a fixed seed reproduces the
// same plan.
func Assign(students []models.Student, seats []models.Seat, rng *rand.Rand) ([]models.SeatingAssignment, Stats, error) {
	var stats Stats
	if err := ValidateCapacity(len(students), len(seats)); err != nil {
		return nil, stats, err
	}

	cycle := partition(students)
	for _, q := range cycle {
		rng.Shuffle(len(q.students), func(i, j int) {
			q.students[i], q.students[j] = q.students[j], q.students[i]
		})
	}
	rng.Shuffle(len(cycle), func(i, j int) { cycle[i], cycle[j] = cycle[j], cycle[i] })

	assignments := make([]models.SeatingAssignment, 0, len(students))
	remaining := len(students)
	cursor := 0
	var (
		currentRoom string
		prevGroup   string
		hasPrev     bool
	)

	for i, seat := range seats {
		if remaining == 0 {
			break
		}
		if i == 0 || seat.RoomID != currentRoom {
			currentRoom = seat.RoomID
			hasPrev = false
		}

		idx := pickGroup(cycle, cursor, prevGroup, hasPrev)
		if idx < 0 {
			// Only the previous seat's group is left.
			seatsAfter := len(seats) - i - 1
			if seatsAfter >= remaining {
				stats.SpacerSeats++
				hasPrev = false
				continue
			}
			idx = nextNonEmpty(cycle, cursor)
			stats.AdjacencyViolations++
		}

		student := cycle[idx].pop()
		remaining--
		cursor = (idx + 1) % len(cycle)
		assignments = append(assignments, models.SeatingAssignment{
			Student:    student,
			Seat:       seat,
			BenchLabel: BenchLabel(seat.PositionIndex, seat.OccupantsPerBench),
		})
		prevGroup = student.Group
		hasPrev = true
	}

	if len(assignments) != len(students) {
		return nil, stats, &IncompleteAllocationError{Seated: len(assignments), Total: len(students), Seats: len(seats)}
	}
	return assignments, stats, nil
}

// partition buckets students by group in first-appearance order.
func partition(students []models.Student) []*groupQueue {
	index := make(map[string]int)
	var queues []*groupQueue
	for _, s := range students {
		i, ok := index[s.Group]
		if !ok {
			i = len(queues)
			index[s.Group] = i
			queues = append(queues, &groupQueue{name: s.Group})
		}
		queues[i].students = append(queues[i].students, s)
	}
	return queues
}

// pickGroup returns the queue to seat next: the largest non-empty queue whose
// group differs from the previous seat, ties resolved in cycle order starting
// at cursor. -1 means no such queue exists.
func pickGroup(cycle []*groupQueue, cursor int, prevGroup string, hasPrev bool) int {
	best := -1
	for step := 0; step < len(cycle); step++ {
		idx := (cursor + step) % len(cycle)
		q := cycle[idx]
		if len(q.students) == 0 {
			continue
		}
		if hasPrev && q.name == prevGroup {
			continue
		}
		if best < 0 || len(q.students) > len(cycle[best].students) {
			best = idx
		}
	}
	return best
}

func nextNonEmpty(cycle []*groupQueue, cursor int) int {
	for step := 0; step < len(cycle); step++ {
		idx := (cursor + step) % len(cycle)
		if len(cycle[idx].students) > 0 {
			return idx
		}
	}
	return -1
}

// BenchLabel renders the bench number of a position with a side suffix: L/R
// for two-seat benches, A, B, C... for wider benches and nothing for singles.
func BenchLabel(position, occupantsPerBench int) string {
	if occupantsPerBench <= 1 {
		return strconv.Itoa(position)
	}
	bench := (position + occupantsPerBench - 1) / occupantsPerBench
	label := strconv.Itoa(bench)
	offset := (position - 1) % occupantsPerBench
	if occupantsPerBench == 2 {
		if offset == 0 {
			return label + "L"
		}
		return label + "R"
	}
	if offset < 26 {
		return label + string(rune('A'+offset))
	}
	return label + "-" + strconv.Itoa(offset+1)
}
