package database

import (
	"context"
	"fmt"
	"time"

	"salonbook/internal/models"
)

// GetWeeklySchedule loads the seven weekday entries for a provider.
// Missing rows come back as non-working days so a partially configured
// provider still yields a valid schedule.
func (db *DB) GetWeeklySchedule(ctx context.Context, providerID string) (*models.WeeklySchedule, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT weekday, is_working, COALESCE(start_time, ''), COALESCE(end_time, ''),
		        COALESCE(break_start, ''), COALESCE(break_end, '')
		 FROM schedules WHERE provider_id = ?`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	defer rows.Close()

	byWeekday := make(map[time.Weekday]models.DaySchedule, 7)
	for rows.Next() {
		var day models.DaySchedule
		var weekday int
		if err := rows.Scan(&weekday, &day.IsWorking, &day.StartTime, &day.EndTime,
			&day.BreakStart, &day.BreakEnd); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		day.Weekday = time.Weekday(weekday)
		byWeekday[day.Weekday] = day
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schedule rows: %w", err)
	}
	if len(byWeekday) == 0 {
		return nil, ErrNotFound
	}

	schedule := &models.WeeklySchedule{Days: make([]models.DaySchedule, 0, 7)}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		day, ok := byWeekday[wd]
		if !ok {
			day = models.DaySchedule{Weekday: wd}
		}
		schedule.Days = append(schedule.Days, day)
	}
	return schedule, nil
}

// SaveWeeklySchedule validates and upserts all seven entries.
func (db *DB) SaveWeeklySchedule(ctx context.Context, providerID string, schedule *models.WeeklySchedule) error {
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, day := range schedule.Days {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schedules (provider_id, weekday, is_working, start_time, end_time, break_start, break_end)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(provider_id, weekday) DO UPDATE SET
			     is_working = excluded.is_working,
			     start_time = excluded.start_time,
			     end_time = excluded.end_time,
			     break_start = excluded.break_start,
			     break_end = excluded.break_end`,
			providerID, int(day.Weekday), day.IsWorking,
			day.StartTime, day.EndTime, day.BreakStart, day.BreakEnd)
		if err != nil {
			return fmt.Errorf("failed to upsert schedule for weekday %d: %w", day.Weekday, err)
		}
	}

	return tx.Commit()
}
