package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonbook/internal/models"
	"salonbook/internal/slots"
)

const bookingColumns = `id, provider_id, client_name, client_phone, client_email,
	service_id, service_name, duration_minutes, price, date, start_time,
	status, notes, COALESCE(idempotency_key, ''), created_at, updated_at, version`

// CreateBookingChecked inserts a booking after re-verifying, inside the
// same transaction, that no pending or confirmed booking of the provider
// overlaps the requested interval. This is the authoritative conflict
// check; the slot list the client saw earlier is only advisory.
func (db *DB) CreateBookingChecked(ctx context.Context, booking *models.Booking) error {
	startMin, err := booking.StartMinutes()
	if err != nil {
		return fmt.Errorf("invalid booking start time: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := scanBookings(tx.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE provider_id = ? AND date = ? AND status IN (?, ?)`,
		booking.ProviderID, booking.Date.Format(models.DateFormat),
		models.StatusPending, models.StatusConfirmed))
	if err != nil {
		return fmt.Errorf("failed to load bookings in tx: %w", err)
	}

	conflict, err := slots.HasConflict(existing, startMin, booking.DurationMinutes, "")
	if err != nil {
		return fmt.Errorf("failed to check conflict in tx: %w", err)
	}
	if conflict {
		return ErrSlotTaken
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (
			id, provider_id, client_name, client_phone, client_email,
			service_id, service_name, duration_minutes, price, date, start_time,
			status, notes, idempotency_key, created_at, updated_at, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.ProviderID,
		booking.ClientName,
		booking.ClientPhone,
		booking.ClientEmail,
		booking.ServiceID,
		booking.ServiceName,
		booking.DurationMinutes,
		booking.Price,
		booking.Date.Format(models.DateFormat),
		booking.StartTime,
		booking.Status,
		booking.Notes,
		booking.IdempotencyKey,
		now,
		now,
		1,
	)
	if err != nil {
		// The partial unique index on (provider_id, date, start_time)
		// closes the window between our SELECT and a concurrent COMMIT.
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)

	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) GetBookingByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key = ?`, key)

	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by idempotency key: %w", err)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id string, version int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		status, time.Now(), id, version)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) ListByProviderAndDate(ctx context.Context, providerID string, date time.Time) ([]*models.Booking, error) {
	bookings, err := scanBookings(db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE provider_id = ? AND date = ? ORDER BY start_time ASC`,
		providerID, date.Format(models.DateFormat)))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by date: %w", err)
	}
	return bookings, nil
}

func (db *DB) ListByProviderAndRange(ctx context.Context, providerID string, start, end time.Time) ([]*models.Booking, error) {
	bookings, err := scanBookings(db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE provider_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC, start_time ASC`,
		providerID, start.Format(models.DateFormat), end.Format(models.DateFormat)))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by range: %w", err)
	}
	return bookings, nil
}

func (db *DB) GetDailyBookings(ctx context.Context, providerID string, start, end time.Time) (map[string][]*models.Booking, error) {
	bookings, err := db.ListByProviderAndRange(ctx, providerID, start, end)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Booking)
	for _, b := range bookings {
		key := b.Date.Format(models.DateFormat)
		daily[key] = append(daily[key], b)
	}
	return daily, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var dateStr string
	err := row.Scan(
		&b.ID, &b.ProviderID, &b.ClientName, &b.ClientPhone, &b.ClientEmail,
		&b.ServiceID, &b.ServiceName, &b.DurationMinutes, &b.Price, &dateStr, &b.StartTime,
		&b.Status, &b.Notes, &b.IdempotencyKey, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}

	b.Date, err = time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	return b, nil
}

func scanBookings(rows *sql.Rows, err error) ([]*models.Booking, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// go-sqlite3 reports constraint failures in the error text; matching
	// on it avoids importing the driver's error types everywhere.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
