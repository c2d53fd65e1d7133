package slots

import "salonbook/internal/models"

// HasConflict reports whether a proposed interval collides with any
// blocking booking in the list. excludeID skips one booking, which lets a
// reschedule check ignore the booking being moved.
//
// The same test runs twice per booking: once when slots are generated and
// again inside the store's transactional insert, because another client
// may have taken the slot between the two calls.
func HasConflict(bookings []*models.Booking, startMinutes, durationMinutes int, excludeID string) (bool, error) {
	for _, b := range bookings {
		if b.ID == excludeID && excludeID != "" {
			continue
		}
		if !b.Blocks() {
			continue
		}

		start, err := b.StartMinutes()
		if err != nil {
			return false, err
		}
		if Overlaps(startMinutes, durationMinutes, start, b.DurationMinutes) {
			return true, nil
		}
	}
	return false, nil
}
