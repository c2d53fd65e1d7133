package slots

import (
	"time"

	"salonbook/internal/models"
)

// SelectableDates returns the calendar dates a date picker should offer:
// the next `days` days starting from today, excluding closed weekdays.
// Past dates never appear because the range starts at today; the
// generator itself stays pure over whatever date it is handed.
func SelectableDates(schedule *models.WeeklySchedule, today time.Time, days int) []time.Time {
	today = Midnight(today)

	var out []time.Time
	for i := 0; i < days; i++ {
		d := today.AddDate(0, 0, i)
		day, ok := schedule.DayFor(d.Weekday())
		if !ok || !day.IsWorking {
			continue
		}
		out = append(out, d)
	}
	return out
}

// IsPast reports whether date falls strictly before today. Both values
// are compared at day precision in date's location.
func IsPast(date, today time.Time) bool {
	return Midnight(date).Before(Midnight(today))
}

// Midnight truncates a timestamp to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
