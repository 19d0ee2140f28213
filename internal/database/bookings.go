package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stolik/internal/models"
)

// timeLayout is the ISO-8601 form bookings are stored with.
const timeLayout = time.RFC3339

// InsertBooking persists one booking in a single statement and fills in the
// store-generated id. Any failure is propagated untouched: either the row
// exists with an id, or no row exists.
func (db *DB) InsertBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				user_id, user_name, table_id, time_slot, booking_date,
				booked_at, booking_for, guests, phone
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING booking_id`

	var bookingFor interface{}
	if booking.BookingFor != nil {
		bookingFor = booking.BookingFor.UTC().Format(timeLayout)
	}

	err := db.QueryRowContext(ctx, query,
		nullString(booking.UserID),
		nullString(booking.UserName),
		booking.TableID,
		booking.TimeSlot,
		nullString(booking.BookingDate),
		booking.BookedAt.UTC().Format(timeLayout),
		bookingFor,
		booking.Guests,
		nullString(booking.Phone),
	).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

// GetBooking returns one booking by its store-generated id.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := selectColumns + ` FROM bookings WHERE booking_id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListRecentBookings returns the most recently submitted bookings,
// newest first.
func (db *DB) ListRecentBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	query := selectColumns + ` FROM bookings ORDER BY booked_at DESC, booking_id DESC LIMIT ?`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetBookingsByDateRange returns bookings whose target date falls inside
// [start, end]. Bookings without an explicit date fall back to the date of
// booking_for, then to the submission date.
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := selectColumns + `
              FROM bookings
              WHERE COALESCE(booking_date, date(booking_for), date(booked_at)) BETWEEN ? AND ?
              ORDER BY COALESCE(booking_date, date(booking_for), date(booked_at)) ASC, time_slot ASC`

	rows, err := db.QueryContext(ctx, query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetBookedSlots returns the distinct busy time slots of a table for one
// calendar date (YYYY-MM-DD).
func (db *DB) GetBookedSlots(ctx context.Context, tableID int64, date string) ([]string, error) {
	query := `SELECT DISTINCT time_slot FROM bookings
              WHERE table_id = ?
                AND (booking_date = ? OR (booking_date IS NULL AND date(booking_for) = ?))
              ORDER BY time_slot`

	rows, err := db.QueryContext(ctx, query, tableID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

const selectColumns = `SELECT booking_id, user_id, user_name, table_id, time_slot,
	              booking_date, booked_at, booking_for, guests, phone`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b           models.Booking
		userID      sql.NullString
		userName    sql.NullString
		bookingDate sql.NullString
		bookedAt    string
		bookingFor  sql.NullString
		phone       sql.NullString
	)

	err := row.Scan(&b.ID, &userID, &userName, &b.TableID, &b.TimeSlot,
		&bookingDate, &bookedAt, &bookingFor, &b.Guests, &phone)
	if err != nil {
		return nil, err
	}

	b.UserID = userID.String
	b.UserName = userName.String
	b.BookingDate = bookingDate.String
	b.Phone = phone.String

	b.BookedAt, err = time.Parse(timeLayout, bookedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booked_at %s: %w", bookedAt, err)
	}
	if bookingFor.Valid {
		t, err := time.Parse(timeLayout, bookingFor.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse booking_for %s: %w", bookingFor.String, err)
		}
		b.BookingFor = &t
	}

	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
