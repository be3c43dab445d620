package models

// Layout describes the physical exam venue: blocks contain floors, floors
// contain rooms, rooms contain benches.
type Layout struct {
	Blocks []Block `json:"blocks" validate:"required,min=1,dive"`
}

// Block is a building or wing of the venue.
type Block struct {
	ID     string  `json:"id" validate:"required"`
	Floors []Floor `json:"floors" validate:"required,min=1,dive"`
}

// Floor groups the rooms on one level of a block.
type Floor struct {
	ID    string `json:"id" validate:"required"`
	Rooms []Room `json:"rooms" validate:"required,min=1,dive"`
}

// Room declares bench capacity. Seat count is BenchCount × OccupantsPerBench.
type Room struct {
	ID                string `json:"id" validate:"required"`
	BenchCount        int    `json:"benchCount" validate:"required,min=1"`
	OccupantsPerBench int    `json:"occupantsPerBench" validate:"required,min=1"`
}

// Capacity returns the number of seats declared by the room.
func (r Room) Capacity() int {
	return r.BenchCount * r.OccupantsPerBench
}

// Seat is one addressable position inside a room. PositionIndex is 1-based and
// seats with consecutive positions in the same room are adjacent.
type Seat struct {
	BlockID           string `json:"block"`
	FloorID           string `json:"floor"`
	RoomID            string `json:"room"`
	PositionIndex     int    `json:"position"`
	OccupantsPerBench int    `json:"occupantsPerBench"`
}
