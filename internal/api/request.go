package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"stolik/internal/models"
)

// resolveBookingRequest maps a raw /book payload onto a BookingRequest.
// Web app clients disagree on field names, so aliases are resolved here:
// table_id/table/tableNumber, time/time_slot, user_name/userName. Numeric
// fields accept both JSON numbers and numeric strings.
func resolveBookingRequest(raw map[string]json.RawMessage) *models.BookingRequest {
	req := &models.BookingRequest{}

	if v, ok := firstPresent(raw, "table_id", "table", "tableNumber"); ok {
		if n, ok := coerceNumber(v); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
			req.TableID = int64(n)
		}
	}

	if v, ok := firstPresent(raw, "time", "time_slot"); ok {
		req.TimeSlot = coerceString(v)
	}

	if v, ok := raw["guests"]; ok && !isNull(v) {
		req.HasGuests = true
		if n, ok := coerceNumber(v); ok {
			req.Guests = n
		} else {
			req.Guests = math.NaN()
		}
	}

	if v, ok := raw["date"]; ok {
		req.Date = coerceString(v)
	}
	if v, ok := raw["phone"]; ok {
		req.Phone = coerceString(v)
	}
	if v, ok := raw["user_id"]; ok {
		req.UserID = coerceString(v)
	}
	if v, ok := firstPresent(raw, "user_name", "userName"); ok {
		req.UserName = coerceString(v)
	}

	return req
}

func firstPresent(raw map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || string(v) == "null"
}

// coerceNumber accepts a JSON number, a numeric string or a bool. The false
// return means the value has no numeric reading at all; callers decide
// whether that is "absent" or "invalid".
func coerceNumber(v json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, true
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
		return 0, false
	}

	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		if b {
			return 1, true
		}
		return 0, true
	}

	return 0, false
}

// coerceString renders a JSON scalar as a string. Objects and arrays come
// back empty, which downstream treats as "not provided".
func coerceString(v json.RawMessage) string {
	if isNull(v) {
		return ""
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}

	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return fmt.Sprintf("%t", b)
	}

	return ""
}
