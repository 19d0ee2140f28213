package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stolik/internal/models"
)

func TestWriteBookingsXLSX(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		{
			ID:          1,
			TableID:     3,
			BookingDate: "2026-03-10",
			TimeSlot:    "19:30",
			Guests:      4,
			Phone:       "+79990001122",
			UserName:    "Анна",
			BookedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:       2,
			TableID:  1,
			TimeSlot: "12:00",
			Guests:   2,
			BookedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBookingsXLSX(&buf, bookings, from, to))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Бронирования", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Период: 01.03.2026 - 31.03.2026", title)

	header, err := f.GetCellValue("Бронирования", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Столик", header)

	table, err := f.GetCellValue("Бронирования", "B3")
	require.NoError(t, err)
	assert.Equal(t, "3", table)

	// Отсутствующая дата выводится с обычным штампом
	date, err := f.GetCellValue("Бронирования", "C4")
	require.NoError(t, err)
	assert.Equal(t, "не указана", date)
}

func TestWriteBookingsXLSXEmpty(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteBookingsXLSX(&buf, nil, from, to))
	assert.NotZero(t, buf.Len())
}

func TestFileName(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "bookings_2026-03-01_to_2026-03-31.xlsx", FileName(from, to))
}
