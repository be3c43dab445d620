package allocator

import (
	"time"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ExamWindow is a parsed, validated exam schedule.
type ExamWindow struct {
	Start      time.Time
	End        time.Time
	DailyStart time.Time
	DailyEnd   time.Time
	SamePlan   bool
}

// ParseSchedule validates the textual schedule.
func ParseSchedule(schedule models.ExamSchedule) (ExamWindow, error) {
	start, err := time.Parse(dateLayout, schedule.StartDate)
	if err != nil {
		return ExamWindow{}, &ScheduleError{Reason: "startDate must be formatted as YYYY-MM-DD"}
	}
	end, err := time.Parse(dateLayout, schedule.EndDate)
	if err != nil {
		return ExamWindow{}, &ScheduleError{Reason: "endDate must be formatted as YYYY-MM-DD"}
	}
	if end.Before(start) {
		return ExamWindow{}, &ScheduleError{Reason: "endDate must not be before startDate"}
	}
	dailyStart, err := time.Parse(timeLayout, schedule.DailyStartTime)
	if err != nil {
		return ExamWindow{}, &ScheduleError{Reason: "dailyStartTime must be formatted as HH:MM"}
	}
	dailyEnd, err := time.Parse(timeLayout, schedule.DailyEndTime)
	if err != nil {
		return ExamWindow{}, &ScheduleError{Reason: "dailyEndTime must be formatted as HH:MM"}
	}
	if !dailyEnd.After(dailyStart) {
		return ExamWindow{}, &ScheduleError{Reason: "dailyEndTime must be after dailyStartTime"}
	}
	return ExamWindow{
		Start:      start,
		End:        end,
		DailyStart: dailyStart,
		DailyEnd:   dailyEnd,
		SamePlan:   schedule.ReuseSamePlanAcrossDays,
	}, nil
}

// DayCount returns the number of calendar days in the window, inclusive.
func (w ExamWindow) DayCount() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Dates starts a fresh enumeration of the window's calendar days.
func (w ExamWindow) Dates() *DateIterator {
	return &DateIterator{next: w.Start, end: w.End}
}

// DateStrings materializes the window as YYYY-MM-DD values.
func (w ExamWindow) DateStrings() []string {
	out := make([]string, 0, w.DayCount())
	it := w.Dates()
	for day, ok := it.Next(); ok; day, ok = it.Next() {
		out = append(out, day.Format(dateLayout))
	}
	return out
}

// DateIterator walks calendar days lazily.
type DateIterator struct {
	next time.Time
	end  time.Time
	done bool
}

// Next yields the following day, false once the window is exhausted.
func (it *DateIterator) Next() (time.Time, bool) {
	if it.done || it.next.After(it.end) {
		it.done = true
		return time.Time{}, false
	}
	day := it.next
	it.next = it.next.AddDate(0, 0, 1)
	return day, true
}
