package models

import "time"

// WizardSession holds the state of one client's booking wizard. The Step
// field decides which of the data fields are meaningful; navigating back
// clears everything captured by later steps.
type WizardSession struct {
	ClientID  string    `json:"client_id"`
	Step      string    `json:"step"`
	SalonMode bool      `json:"salon_mode"`
	UpdatedAt time.Time `json:"updated_at"`

	// Captured at StepSelectService: the denormalized service snapshot.
	ServiceID       string  `json:"service_id,omitempty"`
	ServiceName     string  `json:"service_name,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	Price           float64 `json:"price,omitempty"`

	// Captured at StepSelectProvider (salon mode) or implied otherwise.
	ProviderID string `json:"provider_id,omitempty"`

	// Captured at StepSelectDateTime.
	Date      time.Time `json:"date,omitempty"`
	StartTime string    `json:"start_time,omitempty"`

	// Captured at StepEnterContact.
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`
	Notes       string `json:"notes,omitempty"`

	// Generated once per session so that submit retries stay idempotent.
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// Set after a successful submit.
	BookingID string `json:"booking_id,omitempty"`
}
