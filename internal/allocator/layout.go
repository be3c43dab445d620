package allocator

import (
	"fmt"
	"strings"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// MaxLayoutSeats bounds the number of seats a single layout may declare.
const MaxLayoutSeats = 1_000_000

// Flatten expands a layout into its ordered seat list. Seats follow block,
// floor and room declaration order; inside a room positions run 1..N and
// consecutive positions are adjacent.
func Flatten(layout models.Layout) ([]models.Seat, error) {
	if len(layout.Blocks) == 0 {
		return nil, &LayoutError{Reason: "layout declares no blocks"}
	}

	total := 0
	seen := make(map[string]struct{})
	for _, block := range layout.Blocks {
		for _, floor := range block.Floors {
			for _, room := range floor.Rooms {
				id := strings.TrimSpace(room.ID)
				switch {
				case id == "":
					return nil, &LayoutError{Reason: "room id is required in block " + block.ID + " floor " + floor.ID}
				case room.BenchCount <= 0:
					return nil, &LayoutError{Room: id, Reason: "benchCount must be a positive integer"}
				case room.OccupantsPerBench <= 0:
					return nil, &LayoutError{Room: id, Reason: "occupantsPerBench must be a positive integer"}
				}
				if _, dup := seen[id]; dup {
					return nil, &LayoutError{Room: id, Reason: "room id is declared more than once; room ids must be unique across the whole layout, prefix them with the block or floor"}
				}
				seen[id] = struct{}{}
				if room.BenchCount > (MaxLayoutSeats-total)/room.OccupantsPerBench {
					return nil, &LayoutError{Room: id, Reason: fmt.Sprintf("layout declares more than %d seats", MaxLayoutSeats)}
				}
				total += room.Capacity()
			}
		}
	}
	if total == 0 {
		return nil, &LayoutError{Reason: "layout declares no rooms"}
	}

	seats := make([]models.Seat, 0, total)
	for _, block := range layout.Blocks {
		for _, floor := range block.Floors {
			for _, room := range floor.Rooms {
				for pos := 1; pos <= room.Capacity(); pos++ {
					seats = append(seats, models.Seat{
						BlockID:           block.ID,
						FloorID:           floor.ID,
						RoomID:            strings.TrimSpace(room.ID),
						PositionIndex:     pos,
						OccupantsPerBench: room.OccupantsPerBench,
					})
				}
			}
		}
	}
	return seats, nil
}
