package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stolik/internal/export"
	"stolik/internal/models"
	"stolik/internal/service"
)

const defaultRecentLimit = 50

func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Пустое или нечитаемое тело трактуется как пустой объект
	raw := map[string]json.RawMessage{}
	_ = json.NewDecoder(r.Body).Decode(&raw)

	req := resolveBookingRequest(raw)
	booking, err := s.bookings.CreateBooking(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrMissingField) || errors.Is(err, service.ErrInvalidGuestCount) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("booking insert failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"booking_id": booking.ID,
	})
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tableRaw := strings.TrimSpace(r.URL.Query().Get("table"))
	if tableRaw == "" {
		tableRaw = strings.TrimSpace(r.URL.Query().Get("table_id"))
	}
	tableID, err := strconv.ParseInt(tableRaw, 10, 64)
	if err != nil || tableID <= 0 {
		writeError(w, http.StatusBadRequest, "table is required")
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	busy, free, err := s.bookings.Slots(r.Context(), tableID, date)
	if err != nil {
		s.logger.Error().Err(err).Int64("table_id", tableID).Str("date", date).Msg("slots lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"table_id": tableID,
		"date":     date,
		"busy":     busy,
		"free":     free,
	})
}

func (s *HTTPServer) handleRecentBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultRecentLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	bookings, err := s.store.ListRecentBookings(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("recent bookings lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"bookings": bookings,
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	from, to, err := parseExportRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.store.GetBookingsByDateRange(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("export lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	bookings := make([]models.Booking, 0, len(rows))
	for _, b := range rows {
		bookings = append(bookings, *b)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+export.FileName(from, to)+"\"")

	if err := export.WriteBookingsXLSX(w, bookings, from, to); err != nil {
		s.logger.Error().Err(err).Msg("export write failed")
	}
}

// parseExportRange defaults to the last 30 days when no bounds are given.
func parseExportRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if s := strings.TrimSpace(fromRaw); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date; expected YYYY-MM-DD")
		}
		from = t
	}
	if s := strings.TrimSpace(toRaw); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date; expected YYYY-MM-DD")
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to date is before from date")
	}
	return from, to, nil
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
