package database

import "errors"

var (
	// ErrSlotTaken is the write-time conflict: another pending or
	// confirmed booking overlaps the requested interval. Recoverable by
	// re-fetching slots and picking a different time.
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation covers malformed booking input caught before any
	// write is attempted.
	ErrValidation = errors.New("validation failed")

	// ErrPastDate rejects bookings on dates before today.
	ErrPastDate = errors.New("booking date is in the past")

	// ErrDateTooFar rejects bookings beyond the configured horizon.
	ErrDateTooFar = errors.New("booking date is too far in the future")

	// ErrConcurrentModification signals a lost optimistic-version race on
	// a status update.
	ErrConcurrentModification = errors.New("booking was modified concurrently")

	// ErrUnavailable wraps store timeouts and connectivity failures; the
	// caller may retry.
	ErrUnavailable = errors.New("store unavailable")
)
