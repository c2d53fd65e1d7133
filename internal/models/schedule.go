package models

import (
	"fmt"
	"time"
)

// DaySchedule describes recurring availability for one weekday.
// Times are wall-clock "HH:MM" strings; break fields are optional and
// only meaningful on a working day.
type DaySchedule struct {
	Weekday    time.Weekday `json:"weekday" yaml:"weekday"`
	IsWorking  bool         `json:"is_working" yaml:"is_working"`
	StartTime  string       `json:"start_time,omitempty" yaml:"start_time"`
	EndTime    string       `json:"end_time,omitempty" yaml:"end_time"`
	BreakStart string       `json:"break_start,omitempty" yaml:"break_start"`
	BreakEnd   string       `json:"break_end,omitempty" yaml:"break_end"`
}

// HasBreak reports whether both break bounds are set.
func (d DaySchedule) HasBreak() bool {
	return d.BreakStart != "" && d.BreakEnd != ""
}

// Validate checks the invariants of a single day entry. Times of a
// non-working day are ignored entirely.
func (d DaySchedule) Validate() error {
	if !d.IsWorking {
		return nil
	}

	start, err := ParseClock(d.StartTime)
	if err != nil {
		return fmt.Errorf("weekday %d start: %w", d.Weekday, err)
	}
	end, err := ParseClock(d.EndTime)
	if err != nil {
		return fmt.Errorf("weekday %d end: %w", d.Weekday, err)
	}
	if start >= end {
		return fmt.Errorf("weekday %d: start %s must precede end %s", d.Weekday, d.StartTime, d.EndTime)
	}

	if d.BreakStart == "" && d.BreakEnd == "" {
		return nil
	}
	if d.BreakStart == "" || d.BreakEnd == "" {
		return fmt.Errorf("weekday %d: break requires both start and end", d.Weekday)
	}

	bs, err := ParseClock(d.BreakStart)
	if err != nil {
		return fmt.Errorf("weekday %d break start: %w", d.Weekday, err)
	}
	be, err := ParseClock(d.BreakEnd)
	if err != nil {
		return fmt.Errorf("weekday %d break end: %w", d.Weekday, err)
	}
	if bs >= be {
		return fmt.Errorf("weekday %d: break start %s must precede break end %s", d.Weekday, d.BreakStart, d.BreakEnd)
	}
	if bs < start || be > end {
		return fmt.Errorf("weekday %d: break %s-%s outside working hours %s-%s",
			d.Weekday, d.BreakStart, d.BreakEnd, d.StartTime, d.EndTime)
	}

	return nil
}

// WeeklySchedule is a provider's recurring weekly availability:
// exactly one entry per weekday.
type WeeklySchedule struct {
	Days []DaySchedule `json:"days" yaml:"days"`
}

// Validate enforces exactly seven entries, one per weekday, each valid.
func (w *WeeklySchedule) Validate() error {
	if len(w.Days) != 7 {
		return fmt.Errorf("weekly schedule must have 7 entries, got %d", len(w.Days))
	}

	seen := make(map[time.Weekday]bool, 7)
	for _, day := range w.Days {
		if day.Weekday < time.Sunday || day.Weekday > time.Saturday {
			return fmt.Errorf("invalid weekday %d", day.Weekday)
		}
		if seen[day.Weekday] {
			return fmt.Errorf("duplicate weekday %d", day.Weekday)
		}
		seen[day.Weekday] = true

		if err := day.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DayFor returns the entry for the given weekday.
func (w *WeeklySchedule) DayFor(weekday time.Weekday) (DaySchedule, bool) {
	for _, day := range w.Days {
		if day.Weekday == weekday {
			return day, true
		}
	}
	return DaySchedule{}, false
}
