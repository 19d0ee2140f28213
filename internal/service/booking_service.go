package service

import (
	"context"
	"math"
	"time"

	"stolik/internal/config"
	"stolik/internal/domain"
	"stolik/internal/events"
	"stolik/internal/metrics"
	"stolik/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store    domain.Store
	cache    domain.SlotCache
	eventBus domain.EventPublisher
	grid     []string
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(
	store domain.Store,
	cache domain.SlotCache,
	eventBus domain.EventPublisher,
	restaurant config.RestaurantConfig,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		store:    store,
		cache:    cache,
		eventBus: eventBus,
		grid:     TimeSlots(restaurant.OpenTime, restaurant.CloseTime, restaurant.SlotStepMinutes),
		logger:   logger,
		now:      time.Now,
	}
}

// Validate applies the intake rules: table, time and guests must be present
// and non-falsy, and the guest count must be a positive finite number.
// No further bounds are checked.
func Validate(req *models.BookingRequest) error {
	if req.TableID == 0 || req.TimeSlot == "" || !req.HasGuests || req.Guests == 0 {
		return ErrMissingField
	}
	if math.IsNaN(req.Guests) || math.IsInf(req.Guests, 0) || req.Guests < 0 {
		return ErrInvalidGuestCount
	}
	return nil
}

// CreateBooking validates the request, normalizes its target moment and
// persists the booking in a single insert. The returned booking carries the
// store-generated id. Persistence always completes before any notification
// is attempted: the booking_created event is published only after a
// successful insert.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	booking := &models.Booking{
		UserID:      req.UserID,
		UserName:    req.UserName,
		TableID:     req.TableID,
		TimeSlot:    req.TimeSlot,
		BookingDate: req.Date,
		BookedAt:    now,
		Guests:      int64(req.Guests),
		Phone:       req.Phone,
	}
	if target, ok := BuildBookingFor(req.Date, req.TimeSlot, now); ok {
		booking.BookingFor = &target
	}

	if err := s.store.InsertBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.invalidateSlots(ctx, booking)
	s.publishCreated(booking)

	return booking, nil
}

// Slots returns the busy and free time slots of a table for a calendar date.
// Busy slots are served cache-aside; a cache failure falls back to the store.
func (s *BookingService) Slots(ctx context.Context, tableID int64, date string) (busy, free []string, err error) {
	found := false
	if s.cache != nil {
		cached, ok, cacheErr := s.cache.GetBusySlots(ctx, tableID, date)
		if cacheErr != nil {
			s.logger.Warn().Err(cacheErr).Int64("table_id", tableID).Str("date", date).Msg("slot cache read failed")
		} else if ok {
			busy, found = cached, true
		}
	}

	if !found {
		busy, err = s.store.GetBookedSlots(ctx, tableID, date)
		if err != nil {
			return nil, nil, err
		}
		if s.cache != nil {
			if cacheErr := s.cache.SetBusySlots(ctx, tableID, date, busy); cacheErr != nil {
				s.logger.Warn().Err(cacheErr).Int64("table_id", tableID).Str("date", date).Msg("slot cache write failed")
			}
		}
	}

	busySet := make(map[string]bool, len(busy))
	for _, slot := range busy {
		busySet[slot] = true
	}
	for _, slot := range s.grid {
		if !busySet[slot] {
			free = append(free, slot)
		}
	}
	return busy, free, nil
}

func (s *BookingService) invalidateSlots(ctx context.Context, booking *models.Booking) {
	if s.cache == nil {
		return
	}

	date := booking.BookingDate
	if date == "" && booking.BookingFor != nil {
		date = booking.BookingFor.Format("2006-01-02")
	}
	if date == "" {
		return
	}

	if err := s.cache.Invalidate(ctx, booking.TableID, date); err != nil {
		s.logger.Warn().Err(err).Int64("table_id", booking.TableID).Str("date", date).Msg("slot cache invalidation failed")
	}
}

func (s *BookingService) publishCreated(booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingCreatedPayload{Booking: *booking}
	if err := s.eventBus.PublishJSON(events.EventBookingCreated, payload); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
