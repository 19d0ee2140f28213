package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"stolik/internal/models"
)

const sheetName = "Бронирования"

// WriteBookingsXLSX renders bookings as an Excel workbook and streams it to w.
// Rows are written in the order given, one booking per row.
func WriteBookingsXLSX(w io.Writer, bookings []models.Booking, from, to time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Период: %s - %s",
		from.Format("02.01.2006"), to.Format("02.01.2006")))

	headers := []string{"ID", "Столик", "Дата", "Время", "Гостей", "Телефон", "Пользователь", "Создано"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 3
		date := b.BookingDate
		if date == "" {
			date = models.SentinelNoDate
		}
		user := b.UserName
		if user == "" && b.UserID != "" {
			user = b.UserID
		}

		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), b.TableID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), date)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), b.TimeSlot)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), b.Guests)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), b.Phone)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), user)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), b.BookedAt.Format("02.01.2006 15:04"))
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.MergeCell(sheetName, "A1", lastHeader)
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "E", 12)
	_ = f.SetColWidth(sheetName, "F", "H", 20)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FileName builds the attachment name for an export covering [from, to].
func FileName(from, to time.Time) string {
	return fmt.Sprintf("bookings_%s_to_%s.xlsx",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
}
