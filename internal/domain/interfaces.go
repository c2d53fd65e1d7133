package domain

import (
	"context"
	"time"

	"salonbook/internal/booking"
	"salonbook/internal/models"
	"salonbook/internal/slots"
)

// BookingStore persists bookings. CreateBookingChecked must re-verify the
// requested interval against current pending/confirmed bookings inside
// the same transaction as the insert and fail with the store's slot-taken
// error when another client got there first.
type BookingStore interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error)
	CreateBookingChecked(ctx context.Context, b *models.Booking) error
	UpdateBookingStatusWithVersion(ctx context.Context, id string, version int64, status string) error
	ListByProviderAndDate(ctx context.Context, providerID string, date time.Time) ([]*models.Booking, error)
	ListByProviderAndRange(ctx context.Context, providerID string, start, end time.Time) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, providerID string, start, end time.Time) (map[string][]*models.Booking, error)
}

// ScheduleStore persists providers' recurring weekly availability.
type ScheduleStore interface {
	GetWeeklySchedule(ctx context.Context, providerID string) (*models.WeeklySchedule, error)
	SaveWeeklySchedule(ctx context.Context, providerID string, schedule *models.WeeklySchedule) error
}

// ServiceCatalog persists the services a provider offers.
type ServiceCatalog interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
	ListServices(ctx context.Context, providerID string) ([]*models.Service, error)
	UpsertService(ctx context.Context, svc *models.Service) error
	DeactivateService(ctx context.Context, id string) error
}

// StateRepository keeps wizard sessions between requests.
type StateRepository interface {
	GetSession(ctx context.Context, clientID string) (*models.WizardSession, error)
	SetSession(ctx context.Context, session *models.WizardSession) error
	ClearSession(ctx context.Context, clientID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// EventPublisher fans booking events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService is the core API consumed by transport layers and the
// wizard.
type BookingService interface {
	GetAvailableSlots(ctx context.Context, providerID string, date time.Time, serviceID string) ([]slots.Slot, error)
	GetSelectableDates(ctx context.Context, providerID string, days int) ([]time.Time, error)
	SubmitBooking(ctx context.Context, draft models.BookingDraft) (*models.Booking, error)
	ChangeBookingStatus(ctx context.Context, bookingID string, newStatus string, actor booking.Actor) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetProviderBookings(ctx context.Context, providerID string, start, end time.Time) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, providerID string, start, end time.Time) (map[string][]*models.Booking, error)
}

// CatalogService exposes validated service management.
type CatalogService interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
	ListServices(ctx context.Context, providerID string) ([]*models.Service, error)
	SaveService(ctx context.Context, svc *models.Service) error
	DeactivateService(ctx context.Context, id string) error
}
