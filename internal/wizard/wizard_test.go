package wizard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"salonbook/internal/database"
	"salonbook/internal/models"
	"salonbook/internal/repository"
	"salonbook/internal/service"
	"salonbook/internal/slots"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWizard(t *testing.T) (*Controller, *database.DB) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "wizard_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()

	days := make([]models.DaySchedule, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		days = append(days, models.DaySchedule{
			Weekday:    wd,
			IsWorking:  true,
			StartTime:  "09:00",
			EndTime:    "18:00",
			BreakStart: "12:00",
			BreakEnd:   "13:00",
		})
	}
	require.NoError(t, db.SaveWeeklySchedule(ctx, "prov-1", &models.WeeklySchedule{Days: days}))
	require.NoError(t, db.UpsertService(ctx, &models.Service{
		ID:              "svc-1",
		ProviderID:      "prov-1",
		Name:            "Haircut",
		DurationMinutes: 60,
		Price:           2500,
		Active:          true,
	}))

	logger := zerolog.Nop()
	bookings := service.NewBookingService(db, db, db, nil, 30, 90, 0, 5*time.Second, &logger)
	states := repository.NewMemoryStateRepository(time.Hour)
	return NewController(states, bookings, db, &logger), db
}

func tomorrow() time.Time {
	return slots.Midnight(time.Now().AddDate(0, 0, 1))
}

func runToContact(t *testing.T, c *Controller, clientID string) *models.WizardSession {
	t.Helper()
	ctx := context.Background()

	_, err := c.Start(ctx, clientID, false, "prov-1")
	require.NoError(t, err)

	_, err = c.SelectService(ctx, clientID, "svc-1")
	require.NoError(t, err)

	session, err := c.SelectDateTime(ctx, clientID, tomorrow(), "10:00")
	require.NoError(t, err)
	require.Equal(t, models.StepEnterContact, session.Step)
	return session
}

func TestWizard_FullFlow(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	runToContact(t, c, "client-1")

	b, err := c.Submit(ctx, "client-1", "Anna", "+79990001122", "anna@example.com", "first visit")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, "10:00", b.StartTime)
	assert.Equal(t, "Haircut", b.ServiceName)

	session, err := c.Session(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSubmitted, session.Step)
	assert.Equal(t, b.ID, session.BookingID)
}

func TestWizard_SalonModeAddsProviderStep(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	session, err := c.Start(ctx, "client-1", true, "")
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectService, session.Step)

	session, err = c.SelectService(ctx, "client-1", "svc-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectProvider, session.Step)

	session, err = c.SelectProvider(ctx, "client-1", "prov-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectDateTime, session.Step)
}

func TestWizard_StartRequiresProviderOutsideSalonMode(t *testing.T) {
	c, _ := setupWizard(t)
	_, err := c.Start(context.Background(), "client-1", false, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWizard_StepOrderEnforced(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	_, err := c.SelectService(ctx, "client-1", "svc-1")
	assert.ErrorIs(t, err, ErrNoSession, "no session yet")

	_, err = c.Start(ctx, "client-1", false, "prov-1")
	require.NoError(t, err)

	// Date selection before service selection.
	_, err = c.SelectDateTime(ctx, "client-1", tomorrow(), "10:00")
	assert.ErrorIs(t, err, ErrWrongStep)

	// Submit before contact step.
	_, err = c.Submit(ctx, "client-1", "Anna", "+79990001122", "anna@example.com", "")
	assert.ErrorIs(t, err, ErrWrongStep)

	// Provider step does not exist outside salon mode.
	_, err = c.SelectService(ctx, "client-1", "svc-1")
	require.NoError(t, err)
	_, err = c.SelectProvider(ctx, "client-1", "prov-1")
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestWizard_SelectDateTimeRejectsPast(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "client-1", false, "prov-1")
	require.NoError(t, err)
	_, err = c.SelectService(ctx, "client-1", "svc-1")
	require.NoError(t, err)

	_, err = c.SelectDateTime(ctx, "client-1", time.Now().AddDate(0, 0, -1), "10:00")
	assert.ErrorIs(t, err, database.ErrPastDate)
}

func TestWizard_SelectDateTimeRejectsOffGridTime(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "client-1", false, "prov-1")
	require.NoError(t, err)
	_, err = c.SelectService(ctx, "client-1", "svc-1")
	require.NoError(t, err)

	_, err = c.SelectDateTime(ctx, "client-1", tomorrow(), "10:17")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = c.SelectDateTime(ctx, "client-1", tomorrow(), "12:00")
	assert.ErrorIs(t, err, ErrValidation, "break times are not offered at all")
}

func TestWizard_SelectDateTimeRejectsTakenSlot(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	runToContact(t, c, "client-1")
	_, err := c.Submit(ctx, "client-1", "Anna", "+79990001122", "anna@example.com", "")
	require.NoError(t, err)

	_, err = c.Start(ctx, "client-2", false, "prov-1")
	require.NoError(t, err)
	_, err = c.SelectService(ctx, "client-2", "svc-1")
	require.NoError(t, err)

	_, err = c.SelectDateTime(ctx, "client-2", tomorrow(), "10:00")
	assert.ErrorIs(t, err, database.ErrSlotTaken)
}

func TestWizard_SubmitValidatesContact(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	runToContact(t, c, "client-1")

	_, err := c.Submit(ctx, "client-1", "", "+79990001122", "anna@example.com", "")
	assert.ErrorIs(t, err, ErrValidation, "name required")

	_, err = c.Submit(ctx, "client-1", "Anna", "not-a-phone", "anna@example.com", "")
	assert.ErrorIs(t, err, ErrValidation, "phone format")

	_, err = c.Submit(ctx, "client-1", "Anna", "+79990001122", "broken-email", "")
	assert.ErrorIs(t, err, ErrValidation, "email format")

	_, err = c.Submit(ctx, "client-1", "Anna", "+79990001122", "", "")
	assert.ErrorIs(t, err, ErrValidation, "email required")
}

func TestWizard_SubmitConflictReturnsToDateStep(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	runToContact(t, c, "client-1")
	runToContact(t, c, "client-2")

	_, err := c.Submit(ctx, "client-1", "Anna", "+79990001122", "anna@example.com", "")
	require.NoError(t, err)

	_, err = c.Submit(ctx, "client-2", "Boris", "+79990003344", "boris@example.com", "")
	assert.ErrorIs(t, err, database.ErrSlotTaken)

	session, err := c.Session(ctx, "client-2")
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectDateTime, session.Step, "loser returns to date selection")
	assert.Empty(t, session.StartTime, "the contested time is cleared")
	assert.Equal(t, "svc-1", session.ServiceID, "service choice survives the conflict")
	assert.Equal(t, "prov-1", session.ProviderID)
}

func TestWizard_SubmitIsIdempotent(t *testing.T) {
	c, db := setupWizard(t)
	ctx := context.Background()

	runToContact(t, c, "client-1")

	first, err := c.Submit(ctx, "client-1", "Anna", "+79990001122", "anna@example.com", "")
	require.NoError(t, err)

	// A retried submit (e.g. after a lost response) reuses the session's
	// idempotency key instead of double-booking.
	session, err := c.Session(ctx, "client-1")
	require.NoError(t, err)
	session.Step = models.StepEnterContact
	require.NoError(t, c.save(ctx, session))

	second, err := c.Submit(ctx, "client-1", "Anna", "+79990001122", "anna@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := db.ListByProviderAndDate(ctx, "prov-1", tomorrow())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWizard_BackClearsStepData(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	runToContact(t, c, "client-1")

	session, err := c.Back(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectDateTime, session.Step)
	assert.True(t, session.Date.IsZero())
	assert.Empty(t, session.StartTime)
	assert.Equal(t, "svc-1", session.ServiceID, "earlier steps keep their data")

	session, err = c.Back(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectService, session.Step)
	assert.Empty(t, session.ServiceID)
	assert.Zero(t, session.DurationMinutes)
}

func TestWizard_BackFromFirstStep(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "client-1", false, "prov-1")
	require.NoError(t, err)

	_, err = c.Back(ctx, "client-1")
	assert.ErrorIs(t, err, ErrWrongStep, "nothing before the first step")
}

func TestWizard_BackInSalonModeClearsProvider(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "client-1", true, "")
	require.NoError(t, err)
	_, err = c.SelectService(ctx, "client-1", "svc-1")
	require.NoError(t, err)
	_, err = c.SelectProvider(ctx, "client-1", "prov-1")
	require.NoError(t, err)

	session, err := c.Back(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectProvider, session.Step)
	assert.Empty(t, session.ProviderID)
	assert.Equal(t, "svc-1", session.ServiceID)
}

func TestWizard_Reset(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "client-1", false, "prov-1")
	require.NoError(t, err)

	require.NoError(t, c.Reset(ctx, "client-1"))

	_, err = c.Session(ctx, "client-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestWizard_Slots(t *testing.T) {
	c, _ := setupWizard(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "client-1", false, "prov-1")
	require.NoError(t, err)
	_, err = c.SelectService(ctx, "client-1", "svc-1")
	require.NoError(t, err)

	list, err := c.Slots(ctx, "client-1", tomorrow())
	require.NoError(t, err)
	assert.Len(t, list, 14)
}
