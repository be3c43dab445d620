package allocator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func TestFlattenOrdersSeats(t *testing.T) {
	layout := models.Layout{Blocks: []models.Block{
		{ID: "A", Floors: []models.Floor{
			{ID: "G", Rooms: []models.Room{{ID: "A1", BenchCount: 2, OccupantsPerBench: 2}}},
			{ID: "1", Rooms: []models.Room{{ID: "A2", BenchCount: 1, OccupantsPerBench: 1}}},
		}},
		{ID: "B", Floors: []models.Floor{
			{ID: "G", Rooms: []models.Room{{ID: "B1", BenchCount: 1, OccupantsPerBench: 3}}},
		}},
	}}
	seats, err := Flatten(layout)
	require.NoError(t, err)
	require.Len(t, seats, 8)

	assert.Equal(t, models.Seat{BlockID: "A", FloorID: "G", RoomID: "A1", PositionIndex: 1, OccupantsPerBench: 2}, seats[0])
	assert.Equal(t, 4, seats[3].PositionIndex)
	assert.Equal(t, "A2", seats[4].RoomID)
	assert.Equal(t, 1, seats[4].PositionIndex)
	assert.Equal(t, "B1", seats[7].RoomID)
	assert.Equal(t, 3, seats[7].PositionIndex)
}

func TestFlattenRejectsInvalidRooms(t *testing.T) {
	cases := map[string]models.Room{
		"zero benches":   {ID: "R1", BenchCount: 0, OccupantsPerBench: 2},
		"negative seats": {ID: "R1", BenchCount: 3, OccupantsPerBench: -1},
	}
	for name, room := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Flatten(models.Layout{Blocks: []models.Block{{ID: "A", Floors: []models.Floor{{ID: "1", Rooms: []models.Room{room}}}}}})
			var layoutErr *LayoutError
			require.True(t, errors.As(err, &layoutErr))
			assert.Equal(t, "R1", layoutErr.Room)
		})
	}
}

func TestFlattenRejectsDuplicateRoomIDs(t *testing.T) {
	layout := models.Layout{Blocks: []models.Block{
		{ID: "A", Floors: []models.Floor{{ID: "1", Rooms: []models.Room{{ID: "R1", BenchCount: 1, OccupantsPerBench: 1}}}}},
		{ID: "B", Floors: []models.Floor{{ID: "1", Rooms: []models.Room{{ID: "R1", BenchCount: 1, OccupantsPerBench: 1}}}}},
	}}
	_, err := Flatten(layout)
	var layoutErr *LayoutError
	require.True(t, errors.As(err, &layoutErr))
	assert.Equal(t, "R1", layoutErr.Room)
	assert.Contains(t, layoutErr.Error(), "unique across the whole layout")
}

func TestFlattenRejectsOversizedLayouts(t *testing.T) {
	cases := map[string]models.Layout{
		"product overflows int": singleRoom("R1", 1<<62, 3),
		"huge bench count":      singleRoom("R1", 1_000_000_000, 1),
		"just over the limit":   singleRoom("R1", MaxLayoutSeats/2+1, 2),
		"sum over the limit": {Blocks: []models.Block{{ID: "A", Floors: []models.Floor{{ID: "1", Rooms: []models.Room{
			{ID: "R1", BenchCount: MaxLayoutSeats / 2, OccupantsPerBench: 1},
			{ID: "R2", BenchCount: MaxLayoutSeats/2 + 1, OccupantsPerBench: 1},
		}}}}}},
	}
	for name, layout := range cases {
		t.Run(name, func(t *testing.T) {
			seats, err := Flatten(layout)
			require.Nil(t, seats)
			var layoutErr *LayoutError
			require.True(t, errors.As(err, &layoutErr))
			assert.Contains(t, layoutErr.Reason, "seats")
		})
	}
}

func TestFlattenAcceptsLayoutAtLimit(t *testing.T) {
	seats, err := Flatten(singleRoom("R1", MaxLayoutSeats/4, 4))
	require.NoError(t, err)
	assert.Len(t, seats, MaxLayoutSeats)
}

func TestFlattenRejectsEmptyLayout(t *testing.T) {
	_, err := Flatten(models.Layout{})
	var layoutErr *LayoutError
	require.True(t, errors.As(err, &layoutErr))
}

func TestValidateCapacity(t *testing.T) {
	require.NoError(t, ValidateCapacity(4, 4))
	err := ValidateCapacity(5, 4)
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Contains(t, err.Error(), "5 students")
}
