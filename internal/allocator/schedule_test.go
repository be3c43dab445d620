package allocator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func TestParseScheduleDates(t *testing.T) {
	window, err := ParseSchedule(models.ExamSchedule{
		StartDate: "2024-02-28", EndDate: "2024-03-02", DailyStartTime: "10:00", DailyEndTime: "13:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, window.DayCount())
	assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, window.DateStrings())
}

func TestDateIteratorRestartable(t *testing.T) {
	window, err := ParseSchedule(models.ExamSchedule{
		StartDate: "2024-01-01", EndDate: "2024-01-01", DailyStartTime: "09:00", DailyEndTime: "10:00",
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		it := window.Dates()
		day, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, "2024-01-01", day.Format("2006-01-02"))
		_, ok = it.Next()
		assert.False(t, ok)
		_, ok = it.Next()
		assert.False(t, ok)
	}
}

func TestParseScheduleRejects(t *testing.T) {
	cases := map[string]models.ExamSchedule{
		"bad start":     {StartDate: "01/03/2024", EndDate: "2024-03-02", DailyStartTime: "09:00", DailyEndTime: "12:00"},
		"end before":    {StartDate: "2024-03-03", EndDate: "2024-03-02", DailyStartTime: "09:00", DailyEndTime: "12:00"},
		"bad time":      {StartDate: "2024-03-01", EndDate: "2024-03-02", DailyStartTime: "9am", DailyEndTime: "12:00"},
		"end not after": {StartDate: "2024-03-01", EndDate: "2024-03-02", DailyStartTime: "12:00", DailyEndTime: "12:00"},
	}
	for name, schedule := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSchedule(schedule)
			var scheduleErr *ScheduleError
			require.True(t, errors.As(err, &scheduleErr))
		})
	}
}
