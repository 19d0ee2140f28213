package domain

import (
	"context"
	"time"

	"stolik/internal/models"
)

// Store is the durable relational store for bookings.
type Store interface {
	InsertBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListRecentBookings(ctx context.Context, limit int) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetBookedSlots(ctx context.Context, tableID int64, date string) ([]string, error)
}

// SlotCache caches the busy time slots of a table for one calendar date.
type SlotCache interface {
	GetBusySlots(ctx context.Context, tableID int64, date string) ([]string, bool, error)
	SetBusySlots(ctx context.Context, tableID int64, date string, slots []string) error
	Invalidate(ctx context.Context, tableID int64, date string) error
}

// MessageSender delivers one text message to a Telegram chat.
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// NotificationQueue accepts notifications for asynchronous dispatch.
// Enqueue must not block the caller; it reports whether the notification
// was accepted.
type NotificationQueue interface {
	Enqueue(n models.Notification) bool
}

// EventPublisher publishes in-process domain events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// LedgerWriter appends created bookings to an external ledger.
type LedgerWriter interface {
	AppendBooking(ctx context.Context, booking *models.Booking) error
}
