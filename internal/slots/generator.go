// Package slots computes bookable time slots from a provider's weekly
// schedule, the requested service duration and already existing bookings.
package slots

import (
	"fmt"
	"time"

	"salonbook/internal/models"
)

// Slot is a single candidate appointment start. Slots are derived on
// every query and never persisted.
type Slot struct {
	Time            string `json:"time"` // "09:30"
	DurationMinutes int    `json:"duration_minutes"`
	Available       bool   `json:"available"`
}

// Generate produces the ordered slot list for one day.
//
// Candidates run from the day's opening time to the last start that still
// fits the service before closing, on a stepMinutes grid. Candidates that
// touch the break window are dropped entirely; candidates that collide
// with a pending or confirmed booking are emitted with Available=false so
// a UI can render them as taken rather than hide them.
func Generate(day models.DaySchedule, serviceDuration int, bookings []*models.Booking, stepMinutes int) ([]Slot, error) {
	if !day.IsWorking {
		return nil, nil
	}
	if serviceDuration <= 0 {
		return nil, fmt.Errorf("service duration must be positive, got %d", serviceDuration)
	}
	if stepMinutes <= 0 {
		stepMinutes = models.DefaultStepMinutes
	}

	start, err := models.ParseClock(day.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	end, err := models.ParseClock(day.EndTime)
	if err != nil {
		return nil, fmt.Errorf("parse end time: %w", err)
	}

	var breakStart, breakEnd int
	hasBreak := day.HasBreak()
	if hasBreak {
		breakStart, err = models.ParseClock(day.BreakStart)
		if err != nil {
			return nil, fmt.Errorf("parse break start: %w", err)
		}
		breakEnd, err = models.ParseClock(day.BreakEnd)
		if err != nil {
			return nil, fmt.Errorf("parse break end: %w", err)
		}
	}

	busy, err := busyIntervals(bookings)
	if err != nil {
		return nil, err
	}

	var out []Slot
	for t := start; t+serviceDuration <= end; t += stepMinutes {
		if hasBreak && Overlaps(t, serviceDuration, breakStart, breakEnd-breakStart) {
			continue
		}

		available := true
		for _, b := range busy {
			if Overlaps(t, serviceDuration, b.start, b.length) {
				available = false
				break
			}
		}

		out = append(out, Slot{
			Time:            models.FormatClock(t),
			DurationMinutes: serviceDuration,
			Available:       available,
		})
	}

	return out, nil
}

// GenerateForDate resolves the weekday entry for date and generates its
// slots. A closed day yields an empty list, not an error.
func GenerateForDate(schedule *models.WeeklySchedule, date time.Time, serviceDuration int, bookings []*models.Booking, stepMinutes int) ([]Slot, error) {
	day, ok := schedule.DayFor(date.Weekday())
	if !ok {
		return nil, nil
	}
	return Generate(day, serviceDuration, bookings, stepMinutes)
}

// Overlaps applies the half-open interval test [aStart, aStart+aLen) vs
// [bStart, bStart+bLen): an interval ending exactly where another begins
// does not overlap, so back-to-back bookings are allowed.
func Overlaps(aStart, aLen, bStart, bLen int) bool {
	return aStart < bStart+bLen && bStart < aStart+aLen
}

type interval struct {
	start  int
	length int
}

func busyIntervals(bookings []*models.Booking) ([]interval, error) {
	var busy []interval
	for _, b := range bookings {
		if !b.Blocks() {
			continue
		}
		start, err := b.StartMinutes()
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		busy = append(busy, interval{start: start, length: b.DurationMinutes})
	}
	return busy, nil
}
