package notify

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"stolik/internal/domain"
	"stolik/internal/events"
	"stolik/internal/metrics"
	"stolik/internal/models"
)

// BookingSubscriber turns booking_created events into queued Telegram
// notifications. The admin alert is enqueued before the user confirmation so
// the dispatcher preserves that order.
type BookingSubscriber struct {
	queue       domain.NotificationQueue
	adminChatID int64
	hasAdmin    bool
	enabled     bool
	logger      *zerolog.Logger
}

func NewBookingSubscriber(queue domain.NotificationQueue, adminChatID int64, hasAdmin, enabled bool, logger *zerolog.Logger) *BookingSubscriber {
	return &BookingSubscriber{
		queue:       queue,
		adminChatID: adminChatID,
		hasAdmin:    hasAdmin,
		enabled:     enabled,
		logger:      logger,
	}
}

// Handle implements events.EventHandler.
func (s *BookingSubscriber) Handle(event *events.Event) error {
	if !s.enabled {
		return nil
	}

	var payload events.BookingCreatedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}
	booking := payload.Booking

	if s.hasAdmin {
		s.enqueue(models.Notification{
			Kind:      models.NotificationAdmin,
			ChatID:    s.adminChatID,
			Text:      AdminAlert(&booking),
			BookingID: booking.ID,
		})
	}

	if booking.UserID != "" {
		chatID, err := strconv.ParseInt(booking.UserID, 10, 64)
		if err != nil {
			s.logger.Debug().
				Str("user_id", booking.UserID).
				Int64("booking_id", booking.ID).
				Msg("user id is not a telegram chat id, confirmation skipped")
			return nil
		}
		s.enqueue(models.Notification{
			Kind:      models.NotificationUser,
			ChatID:    chatID,
			Text:      UserConfirmation(&booking),
			BookingID: booking.ID,
		})
	}

	return nil
}

func (s *BookingSubscriber) enqueue(n models.Notification) {
	if !s.queue.Enqueue(n) {
		metrics.IncNotification(n.Kind, "dropped")
		s.logger.Warn().
			Str("kind", n.Kind).
			Int64("booking_id", n.BookingID).
			Msg("notification queue full, message dropped")
	}
}
