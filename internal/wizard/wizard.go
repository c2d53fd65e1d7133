// Package wizard drives the multi-step booking flow: select a service,
// optionally a provider (salon context), then a date and time, then
// contact details, then submit. Step ordering is enforced by an explicit
// transition table; later steps are unreachable until earlier ones are
// complete.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook/internal/database"
	"salonbook/internal/domain"
	"salonbook/internal/models"
	"salonbook/internal/slots"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoSession means the client has no active wizard session.
	ErrNoSession = errors.New("no active booking session")

	// ErrWrongStep means the requested operation does not match the
	// session's current step.
	ErrWrongStep = errors.New("operation not allowed at current step")

	// ErrValidation covers missing or malformed user input; it is caught
	// before any write is attempted.
	ErrValidation = errors.New("validation failed")
)

// backSteps maps each step to its predecessor. SelectProvider only
// exists in salon mode; prevStep handles the branch.
var backSteps = map[string]string{
	models.StepSelectProvider: models.StepSelectService,
	models.StepSelectDateTime: models.StepSelectProvider,
	models.StepEnterContact:   models.StepSelectDateTime,
}

// Controller sequences the wizard. Session state lives in the injected
// StateRepository so the flow survives process restarts.
type Controller struct {
	states   domain.StateRepository
	bookings domain.BookingService
	catalog  domain.ServiceCatalog
	logger   *zerolog.Logger
}

func NewController(states domain.StateRepository, bookings domain.BookingService, catalog domain.ServiceCatalog, logger *zerolog.Logger) *Controller {
	return &Controller{
		states:   states,
		bookings: bookings,
		catalog:  catalog,
		logger:   logger,
	}
}

// Start opens a fresh session. In salon mode the provider is chosen in
// its own step; otherwise providerID fixes it for the whole flow.
func (c *Controller) Start(ctx context.Context, clientID string, salonMode bool, providerID string) (*models.WizardSession, error) {
	if !salonMode && providerID == "" {
		return nil, fmt.Errorf("%w: provider is required outside salon mode", ErrValidation)
	}

	session := &models.WizardSession{
		ClientID:       clientID,
		Step:           models.StepSelectService,
		SalonMode:      salonMode,
		ProviderID:     providerID,
		IdempotencyKey: uuid.NewString(),
		UpdatedAt:      time.Now(),
	}
	if err := c.states.SetSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectService records the denormalized service snapshot and advances.
func (c *Controller) SelectService(ctx context.Context, clientID, serviceID string) (*models.WizardSession, error) {
	session, err := c.sessionAt(ctx, clientID, models.StepSelectService)
	if err != nil {
		return nil, err
	}

	svc, err := c.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	session.ServiceID = svc.ID
	session.ServiceName = svc.Name
	session.DurationMinutes = svc.DurationMinutes
	session.Price = svc.Price

	if session.SalonMode {
		session.Step = models.StepSelectProvider
	} else {
		session.Step = models.StepSelectDateTime
	}

	return session, c.save(ctx, session)
}

// SelectProvider is the salon-context step between service and date.
func (c *Controller) SelectProvider(ctx context.Context, clientID, providerID string) (*models.WizardSession, error) {
	session, err := c.sessionAt(ctx, clientID, models.StepSelectProvider)
	if err != nil {
		return nil, err
	}
	if !session.SalonMode {
		return nil, ErrWrongStep
	}
	if providerID == "" {
		return nil, fmt.Errorf("%w: provider is required", ErrValidation)
	}

	session.ProviderID = providerID
	session.Step = models.StepSelectDateTime
	return session, c.save(ctx, session)
}

// Slots regenerates the slot list for the session's provider and service
// on the given date. Called every time the client changes the date, and
// again after a lost submit race.
func (c *Controller) Slots(ctx context.Context, clientID string, date time.Time) ([]slots.Slot, error) {
	session, err := c.sessionAt(ctx, clientID, models.StepSelectDateTime)
	if err != nil {
		return nil, err
	}
	return c.bookings.GetAvailableSlots(ctx, session.ProviderID, date, session.ServiceID)
}

// SelectDateTime validates that the requested time is an available slot
// on that date and advances to contact entry.
func (c *Controller) SelectDateTime(ctx context.Context, clientID string, date time.Time, startTime string) (*models.WizardSession, error) {
	session, err := c.sessionAt(ctx, clientID, models.StepSelectDateTime)
	if err != nil {
		return nil, err
	}

	if slots.IsPast(date, time.Now()) {
		return nil, database.ErrPastDate
	}

	available, err := c.bookings.GetAvailableSlots(ctx, session.ProviderID, date, session.ServiceID)
	if err != nil {
		return nil, err
	}

	found := false
	for _, slot := range available {
		if slot.Time == startTime {
			if !slot.Available {
				return nil, database.ErrSlotTaken
			}
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s is not a bookable time on %s",
			ErrValidation, startTime, date.Format(models.DateFormat))
	}

	session.Date = slots.Midnight(date)
	session.StartTime = startTime
	session.Step = models.StepEnterContact
	return session, c.save(ctx, session)
}

// Submit validates contact details, assembles the draft and hands it to
// the booking service. A slot conflict sends the session back to the
// date/time step with the chosen time cleared and everything else kept.
func (c *Controller) Submit(ctx context.Context, clientID, name, phone, email, notes string) (*models.Booking, error) {
	session, err := c.sessionAt(ctx, clientID, models.StepEnterContact)
	if err != nil {
		return nil, err
	}

	if err := validateContact(name, phone, email); err != nil {
		return nil, err
	}

	session.ClientName = name
	session.ClientPhone = phone
	session.ClientEmail = email
	session.Notes = notes

	draft := models.BookingDraft{
		ProviderID:     session.ProviderID,
		ServiceID:      session.ServiceID,
		Date:           session.Date,
		StartTime:      session.StartTime,
		ClientName:     name,
		ClientPhone:    phone,
		ClientEmail:    email,
		Notes:          notes,
		IdempotencyKey: session.IdempotencyKey,
	}

	b, err := c.bookings.SubmitBooking(ctx, draft)
	if err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			session.Step = models.StepSelectDateTime
			session.StartTime = ""
			if saveErr := c.save(ctx, session); saveErr != nil {
				c.logger.Error().Err(saveErr).Str("client_id", clientID).Msg("save session after slot conflict")
			}
		}
		return nil, err
	}

	session.Step = models.StepSubmitted
	session.BookingID = b.ID
	if err := c.save(ctx, session); err != nil {
		c.logger.Error().Err(err).Str("client_id", clientID).Msg("save session after submit")
	}

	return b, nil
}

// Back moves one step backward and discards everything the step being
// returned to had captured, so moving forward again starts clean.
func (c *Controller) Back(ctx context.Context, clientID string) (*models.WizardSession, error) {
	session, err := c.session(ctx, clientID)
	if err != nil {
		return nil, err
	}

	prev, ok := backSteps[session.Step]
	if !ok {
		return nil, ErrWrongStep
	}
	if prev == models.StepSelectProvider && !session.SalonMode {
		prev = models.StepSelectService
	}

	switch prev {
	case models.StepSelectService:
		session.ServiceID = ""
		session.ServiceName = ""
		session.DurationMinutes = 0
		session.Price = 0
		if session.SalonMode {
			session.ProviderID = ""
		}
	case models.StepSelectProvider:
		session.ProviderID = ""
	case models.StepSelectDateTime:
		session.Date = time.Time{}
		session.StartTime = ""
	}

	session.Step = prev
	return session, c.save(ctx, session)
}

// Reset abandons the session entirely.
func (c *Controller) Reset(ctx context.Context, clientID string) error {
	return c.states.ClearSession(ctx, clientID)
}

// Session returns the current session, if any.
func (c *Controller) Session(ctx context.Context, clientID string) (*models.WizardSession, error) {
	return c.session(ctx, clientID)
}

func (c *Controller) session(ctx context.Context, clientID string) (*models.WizardSession, error) {
	session, err := c.states.GetSession(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}

func (c *Controller) sessionAt(ctx context.Context, clientID, step string) (*models.WizardSession, error) {
	session, err := c.session(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if session.Step != step {
		return nil, fmt.Errorf("%w: at %s, expected %s", ErrWrongStep, session.Step, step)
	}
	return session, nil
}

func (c *Controller) save(ctx context.Context, session *models.WizardSession) error {
	session.UpdatedAt = time.Now()
	return c.states.SetSession(ctx, session)
}

func validateContact(name, phone, email string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !models.ValidPhone(phone) {
		return fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	if !models.ValidEmail(email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}
