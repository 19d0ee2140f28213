package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stolik/internal/domain"
	"stolik/internal/events"
)

// LedgerSubscriber mirrors booking_created events into the spreadsheet
// ledger. Appends run in their own goroutine so a slow Sheets API call never
// delays other subscribers.
type LedgerSubscriber struct {
	ledger  domain.LedgerWriter
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewLedgerSubscriber(ledger domain.LedgerWriter, timeout time.Duration, logger *zerolog.Logger) *LedgerSubscriber {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LedgerSubscriber{ledger: ledger, timeout: timeout, logger: logger}
}

// Handle implements events.EventHandler.
func (s *LedgerSubscriber) Handle(event *events.Event) error {
	var payload events.BookingCreatedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		booking := payload.Booking
		if err := s.ledger.AppendBooking(ctx, &booking); err != nil {
			s.logger.Error().
				Err(err).
				Int64("booking_id", booking.ID).
				Msg("ledger append failed")
		}
	}()
	return nil
}
