package models

import "time"

// Booking is one reservation record for a table, time slot and party size.
// Bookings are create-only: once inserted they are never mutated or removed.
type Booking struct {
	ID          int64      `json:"booking_id"`
	UserID      string     `json:"user_id,omitempty"`
	UserName    string     `json:"user_name,omitempty"`
	TableID     int64      `json:"table_id"`
	TimeSlot    string     `json:"time_slot"`
	BookingDate string     `json:"booking_date,omitempty"` // YYYY-MM-DD, empty when the caller gave none
	BookedAt    time.Time  `json:"booked_at"`
	BookingFor  *time.Time `json:"booking_for,omitempty"`
	Guests      int64      `json:"guests"`
	Phone       string     `json:"phone,omitempty"`
}

// BookingRequest is the boundary struct a raw /book payload resolves into.
// TableID is 0 and TimeSlot is "" when the corresponding field was absent or
// could not be coerced; HasGuests distinguishes "guests missing" from
// "guests present but unparseable" (Guests is NaN in the latter case).
type BookingRequest struct {
	TableID   int64
	Date      string
	TimeSlot  string
	Guests    float64
	HasGuests bool
	Phone     string
	UserID    string
	UserName  string
}
