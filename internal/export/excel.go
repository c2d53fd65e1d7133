// Package export writes provider dashboards to Excel files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"salonbook/internal/domain"
	"salonbook/internal/models"

	"github.com/xuri/excelize/v2"
)

// Exporter renders a provider's bookings for a date range into an .xlsx
// file under the configured directory.
type Exporter struct {
	bookings domain.BookingService
	dir      string
}

func NewExporter(bookings domain.BookingService, dir string) *Exporter {
	return &Exporter{
		bookings: bookings,
		dir:      dir,
	}
}

// ExportBookings writes one row per booking, grouped by day, and returns
// the generated file path.
func (e *Exporter) ExportBookings(ctx context.Context, providerID string, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	daily, err := e.bookings.GetDailyBookings(ctx, providerID, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bookings %s - %s",
		startDate.Format(models.DateFormat), endDate.Format(models.DateFormat)))
	_ = f.MergeCell(sheetName, "A1", "G1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"Date", "Time", "Client", "Phone", "Service", "Status", "Price"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, "A2", "G2", headerStyle)

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	row := 3
	for _, dateKey := range dates {
		for _, b := range daily[dateKey] {
			values := []interface{}{
				dateKey, b.StartTime, b.ClientName, b.ClientPhone,
				b.ServiceName, b.Status, b.Price,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheetName, cell, v)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 8)
	_ = f.SetColWidth(sheetName, "C", "E", 22)
	_ = f.SetColWidth(sheetName, "F", "G", 12)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_%s_to_%s.xlsx",
		providerID, startDate.Format(models.DateFormat), endDate.Format(models.DateFormat))
	path := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving export: %w", err)
	}

	return path, nil
}
