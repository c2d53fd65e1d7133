package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook/internal/booking"
	"salonbook/internal/database"
	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/metrics"
	"salonbook/internal/models"
	"salonbook/internal/slots"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingService is the core facade: slot computation, booking submit
// with the write-time conflict check, and lifecycle transitions. All
// collaborators are injected; the service owns no ambient state.
type BookingService struct {
	bookings       domain.BookingStore
	schedules      domain.ScheduleStore
	catalog        domain.ServiceCatalog
	eventBus       domain.EventPublisher
	stepMinutes    int
	maxBookingDays int
	minAdvance     time.Duration
	storeTimeout   time.Duration
	logger         *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingStore,
	schedules domain.ScheduleStore,
	catalog domain.ServiceCatalog,
	eventBus domain.EventPublisher,
	stepMinutes int,
	maxBookingDays int,
	minAdvanceMinutes int,
	storeTimeout time.Duration,
	logger *zerolog.Logger,
) *BookingService {
	if stepMinutes <= 0 {
		stepMinutes = models.DefaultStepMinutes
	}
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	if storeTimeout <= 0 {
		storeTimeout = models.DefaultStoreTimeoutSeconds * time.Second
	}
	return &BookingService{
		bookings:       bookings,
		schedules:      schedules,
		catalog:        catalog,
		eventBus:       eventBus,
		stepMinutes:    stepMinutes,
		maxBookingDays: maxBookingDays,
		minAdvance:     time.Duration(minAdvanceMinutes) * time.Minute,
		storeTimeout:   storeTimeout,
		logger:         logger,
	}
}

// ValidateBookingDate rejects past dates and dates beyond the horizon.
func (s *BookingService) ValidateBookingDate(date time.Time) error {
	today := slots.Midnight(time.Now())
	if slots.IsPast(date, today) {
		return database.ErrPastDate
	}
	if slots.Midnight(date).After(today.AddDate(0, 0, s.maxBookingDays)) {
		return database.ErrDateTooFar
	}
	return nil
}

// GetAvailableSlots computes the slot list for a provider, date and
// service. A closed day yields an empty list; absence of slots is the
// signal, not an error.
func (s *BookingService) GetAvailableSlots(ctx context.Context, providerID string, date time.Time, serviceID string) ([]slots.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, s.wrapStoreErr("get service", err)
	}

	schedule, err := s.schedules.GetWeeklySchedule(ctx, providerID)
	if err != nil {
		return nil, s.wrapStoreErr("get schedule", err)
	}

	bookingsOnDate, err := s.bookings.ListByProviderAndDate(ctx, providerID, date)
	if err != nil {
		return nil, s.wrapStoreErr("list bookings", err)
	}

	result, err := slots.GenerateForDate(schedule, date, svc.DurationMinutes, bookingsOnDate, s.stepMinutes)
	if err != nil {
		return nil, fmt.Errorf("generate slots: %w", err)
	}

	metrics.IncSlotGeneration()
	return result, nil
}

// GetSelectableDates returns the dates a date picker should offer for a
// provider, starting today.
func (s *BookingService) GetSelectableDates(ctx context.Context, providerID string, days int) ([]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if days <= 0 || days > s.maxBookingDays {
		days = s.maxBookingDays
	}

	schedule, err := s.schedules.GetWeeklySchedule(ctx, providerID)
	if err != nil {
		return nil, s.wrapStoreErr("get schedule", err)
	}

	return slots.SelectableDates(schedule, time.Now(), days), nil
}

// SubmitBooking validates the draft, snapshots the service onto a new
// pending booking and persists it through the store's transactional
// conflict check. Resubmitting an idempotency key returns the booking
// created the first time.
func (s *BookingService) SubmitBooking(ctx context.Context, draft models.BookingDraft) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if err := s.ValidateBookingDate(draft.Date); err != nil {
		return nil, err
	}
	if s.minAdvance > 0 {
		if err := s.checkMinAdvance(draft); err != nil {
			return nil, err
		}
	}

	if draft.IdempotencyKey != "" {
		existing, err := s.bookings.GetBookingByIdempotencyKey(ctx, draft.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, s.wrapStoreErr("idempotency lookup", err)
		}
	}

	svc, err := s.catalog.GetService(ctx, draft.ServiceID)
	if err != nil {
		return nil, s.wrapStoreErr("get service", err)
	}

	now := time.Now()
	b := &models.Booking{
		ID:              uuid.NewString(),
		ProviderID:      draft.ProviderID,
		ClientName:      draft.ClientName,
		ClientPhone:     draft.ClientPhone,
		ClientEmail:     draft.ClientEmail,
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		DurationMinutes: svc.DurationMinutes,
		Price:           svc.Price,
		Date:            slots.Midnight(draft.Date),
		StartTime:       draft.StartTime,
		Status:          models.StatusPending,
		Notes:           draft.Notes,
		IdempotencyKey:  draft.IdempotencyKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookings.CreateBookingChecked(ctx, b); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncSubmitConflict()
			s.logger.Info().
				Str("provider_id", b.ProviderID).
				Str("date", b.Date.Format(models.DateFormat)).
				Str("start_time", b.StartTime).
				Msg("booking submit lost slot race")
			return nil, err
		}
		return nil, s.wrapStoreErr("create booking", err)
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, b, "client")

	return b, nil
}

// ChangeBookingStatus applies a lifecycle transition on behalf of an
// actor. Terminal states reject every request with ErrInvalidTransition.
func (s *BookingService) ChangeBookingStatus(ctx context.Context, bookingID string, newStatus string, actor booking.Actor) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return s.wrapStoreErr("get booking", err)
	}

	if !booking.CanTransition(b.Status, newStatus, actor) {
		return booking.ErrInvalidTransition
	}

	if err := s.bookings.UpdateBookingStatusWithVersion(ctx, bookingID, b.Version, newStatus); err != nil {
		return s.wrapStoreErr("update status", err)
	}

	metrics.IncStatusTransition(newStatus)
	b.Status = newStatus
	s.publishEvent(eventTypeFor(newStatus), b, string(actor))

	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, s.wrapStoreErr("get booking", err)
	}
	return b, nil
}

func (s *BookingService) GetProviderBookings(ctx context.Context, providerID string, start, end time.Time) ([]*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	list, err := s.bookings.ListByProviderAndRange(ctx, providerID, start, end)
	if err != nil {
		return nil, s.wrapStoreErr("list bookings", err)
	}
	return list, nil
}

func (s *BookingService) GetDailyBookings(ctx context.Context, providerID string, start, end time.Time) (map[string][]*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	daily, err := s.bookings.GetDailyBookings(ctx, providerID, start, end)
	if err != nil {
		return nil, s.wrapStoreErr("daily bookings", err)
	}
	return daily, nil
}

func (s *BookingService) checkMinAdvance(draft models.BookingDraft) error {
	startMin, err := models.ParseClock(draft.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	startAt := slots.Midnight(draft.Date).Add(time.Duration(startMin) * time.Minute)
	if time.Until(startAt) < s.minAdvance {
		return database.ErrPastDate
	}
	return nil
}

// wrapStoreErr maps timeouts and cancellations onto ErrUnavailable so
// callers can tell retryable store failures from domain errors.
func (s *BookingService) wrapStoreErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, database.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *BookingService) publishEvent(eventType string, b *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   b.ID,
		ProviderID:  b.ProviderID,
		ClientName:  b.ClientName,
		ServiceName: b.ServiceName,
		Date:        b.Date,
		StartTime:   b.StartTime,
		Status:      b.Status,
		ChangedBy:   changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", b.ID).Msg("publish event error")
	}
}

func eventTypeFor(status string) string {
	switch status {
	case models.StatusConfirmed:
		return events.EventBookingConfirmed
	case models.StatusCancelled:
		return events.EventBookingCancelled
	case models.StatusCompleted:
		return events.EventBookingCompleted
	default:
		return events.EventBookingCreated
	}
}

func validateDraft(draft models.BookingDraft) error {
	if draft.ProviderID == "" {
		return fmt.Errorf("%w: provider is required", database.ErrValidation)
	}
	if draft.ServiceID == "" {
		return fmt.Errorf("%w: service is required", database.ErrValidation)
	}
	if draft.ClientName == "" {
		return fmt.Errorf("%w: client name is required", database.ErrValidation)
	}
	if !models.ValidPhone(draft.ClientPhone) {
		return fmt.Errorf("%w: invalid phone number", database.ErrValidation)
	}
	if !models.ValidEmail(draft.ClientEmail) {
		return fmt.Errorf("%w: invalid email address", database.ErrValidation)
	}
	if draft.StartTime == "" {
		return fmt.Errorf("%w: start time is required", database.ErrValidation)
	}
	if _, err := models.ParseClock(draft.StartTime); err != nil {
		return fmt.Errorf("%w: %v", database.ErrValidation, err)
	}
	return nil
}
