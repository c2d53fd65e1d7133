package slots

import (
	"testing"
	"time"

	"salonbook/internal/models"

	"github.com/stretchr/testify/assert"
)

func weekdaysOnly() *models.WeeklySchedule {
	days := make([]models.DaySchedule, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		day := models.DaySchedule{Weekday: wd}
		if wd != time.Sunday && wd != time.Saturday {
			day.IsWorking = true
			day.StartTime = "09:00"
			day.EndTime = "18:00"
		}
		days = append(days, day)
	}
	return &models.WeeklySchedule{Days: days}
}

func TestSelectableDates_SkipsClosedDays(t *testing.T) {
	// 2026-09-07 is a Monday.
	monday := time.Date(2026, 9, 7, 15, 30, 0, 0, time.UTC)

	dates := SelectableDates(weekdaysOnly(), monday, 7)
	assert.Len(t, dates, 5, "Mon-Fri of one week")

	for _, d := range dates {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
		assert.Equal(t, 0, d.Hour(), "dates are normalized to midnight")
	}
	assert.Equal(t, monday.Day(), dates[0].Day(), "today is offered when open")
}

func TestSelectableDates_ZeroDays(t *testing.T) {
	dates := SelectableDates(weekdaysOnly(), time.Now(), 0)
	assert.Empty(t, dates)
}

func TestIsPast(t *testing.T) {
	today := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsPast(today.AddDate(0, 0, -1), today))
	assert.False(t, IsPast(today, today), "same calendar day is not past")
	assert.False(t, IsPast(today.Add(-6*time.Hour), today), "earlier hour on the same day is not past")
	assert.False(t, IsPast(today.AddDate(0, 0, 1), today))
}

func TestMidnight(t *testing.T) {
	ts := time.Date(2026, 9, 7, 23, 59, 59, 1000, time.UTC)
	got := Midnight(ts)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), got)
}
