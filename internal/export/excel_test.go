package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"salonbook/internal/database"
	"salonbook/internal/models"
	"salonbook/internal/service"
	"salonbook/internal/slots"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupExporter(t *testing.T) (*Exporter, *service.BookingService) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "export_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()

	days := make([]models.DaySchedule, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		days = append(days, models.DaySchedule{
			Weekday:   wd,
			IsWorking: true,
			StartTime: "09:00",
			EndTime:   "18:00",
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
	return NewExporter(bookings, t.TempDir()), bookings
}

func TestExportBookings(t *testing.T) {
	exporter, bookings := setupExporter(t)
	ctx := context.Background()

	date := slots.Midnight(time.Now().AddDate(0, 0, 1))
	for _, start := range []string{"10:00", "14:00"} {
		_, err := bookings.SubmitBooking(ctx, models.BookingDraft{
			ProviderID:  "prov-1",
			ServiceID:   "svc-1",
			Date:        date,
			StartTime:   start,
			ClientName:  "Anna",
			ClientPhone: "+79990001122",
			ClientEmail: "anna@example.com",
		})
		require.NoError(t, err)
	}

	path, err := exporter.ExportBookings(ctx, "prov-1", date, date)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 4, "title, header and two booking rows")

	assert.Equal(t, "Time", rows[1][1])
	assert.Equal(t, "10:00", rows[2][1], "bookings are sorted by time")
	assert.Equal(t, "14:00", rows[3][1])
	assert.Equal(t, "Anna", rows[2][2])
	assert.Equal(t, "Haircut", rows[2][4])
}

func TestExportBookings_EmptyRange(t *testing.T) {
	exporter, _ := setupExporter(t)

	date := slots.Midnight(time.Now().AddDate(0, 0, 1))
	path, err := exporter.ExportBookings(context.Background(), "prov-1", date, date)
	require.NoError(t, err)
	assert.FileExists(t, path, "an empty range still produces a file with headers")
}
