package models

import "time"

// Booking is an appointment of a client with a provider. ServiceName,
// DurationMinutes and Price are a denormalized snapshot of the service
// taken at creation time.
type Booking struct {
	ID              string    `json:"id"`
	ProviderID      string    `json:"provider_id"`
	ClientName      string    `json:"client_name"`
	ClientPhone     string    `json:"client_phone"`
	ClientEmail     string    `json:"client_email"`
	ServiceID       string    `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Date            time.Time `json:"date"`       // calendar date, time part ignored
	StartTime       string    `json:"start_time"` // "HH:MM"
	Status          string    `json:"status"`     // pending, confirmed, cancelled, completed
	Notes           string    `json:"notes"`
	IdempotencyKey  string    `json:"idempotency_key,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int64     `json:"version"`
}

// StartMinutes returns the booking start as minutes since midnight.
func (b *Booking) StartMinutes() (int, error) {
	return ParseClock(b.StartTime)
}

// Blocks reports whether the booking occupies its slot. Cancelled and
// completed bookings free the interval for new appointments.
func (b *Booking) Blocks() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// BookingDraft is what the wizard hands to the booking service on submit.
type BookingDraft struct {
	ProviderID     string    `json:"provider_id"`
	ServiceID      string    `json:"service_id"`
	Date           time.Time `json:"date"`
	StartTime      string    `json:"start_time"`
	ClientName     string    `json:"client_name"`
	ClientPhone    string    `json:"client_phone"`
	ClientEmail    string    `json:"client_email"`
	Notes          string    `json:"notes"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}
