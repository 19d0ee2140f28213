package service

import (
	"strconv"
	"strings"
	"time"
)

// BuildBookingFor computes the target moment of a reservation from an
// optional calendar date ("YYYY-MM-DD") and a wall-clock time ("HH:MM"),
// both interpreted in now's location.
//
// Rules, in order:
//   - empty timeStr: no result;
//   - dateStr present and date+time parseable: that moment;
//   - otherwise: today at timeStr, rolled forward one day if already past;
//   - unparseable hour/minute: no result.
//
// The function never fails: a malformed date degrades to an absent result so
// it can never block creation of the booking record.
func BuildBookingFor(dateStr, timeStr string, now time.Time) (time.Time, bool) {
	if timeStr == "" {
		return time.Time{}, false
	}

	if dateStr != "" {
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", dateStr+"T"+timeStr+":00", now.Location()); err == nil {
			return t, true
		}
		// Непарсящаяся дата не ошибка: переходим к правилу "сегодня/завтра".
	}

	parts := strings.Split(timeStr, ":")
	if len(parts) < 2 {
		return time.Time{}, false
	}
	hh, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	mm, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errH != nil || errM != nil {
		return time.Time{}, false
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, now.Location())
	if candidate.Before(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, true
}
