package service

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"stolik/internal/config"
	"stolik/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	inserted  []*models.Booking
	insertErr error
	nextID    int64
	busy      map[string][]string
}

func (f *fakeStore) InsertBooking(_ context.Context, booking *models.Booking) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	booking.ID = f.nextID
	f.inserted = append(f.inserted, booking)
	return nil
}

func (f *fakeStore) GetBooking(context.Context, int64) (*models.Booking, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) ListRecentBookings(context.Context, int) ([]*models.Booking, error) {
	return nil, nil
}

func (f *fakeStore) GetBookingsByDateRange(context.Context, time.Time, time.Time) ([]*models.Booking, error) {
	return nil, nil
}

func (f *fakeStore) GetBookedSlots(_ context.Context, _ int64, date string) ([]string, error) {
	return f.busy[date], nil
}

type fakeCache struct {
	entries     map[string][]string
	getErr      error
	invalidated []string
}

func cacheKey(tableID int64, date string) string {
	return date
}

func (f *fakeCache) GetBusySlots(_ context.Context, tableID int64, date string) ([]string, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	slots, ok := f.entries[cacheKey(tableID, date)]
	return slots, ok, nil
}

func (f *fakeCache) SetBusySlots(_ context.Context, tableID int64, date string, slots []string) error {
	if f.entries == nil {
		f.entries = make(map[string][]string)
	}
	f.entries[cacheKey(tableID, date)] = slots
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, tableID int64, date string) error {
	f.invalidated = append(f.invalidated, cacheKey(tableID, date))
	delete(f.entries, cacheKey(tableID, date))
	return nil
}

type fakeBus struct {
	published []string
}

func (f *fakeBus) PublishJSON(eventType string, _ interface{}) error {
	f.published = append(f.published, eventType)
	return nil
}

func newTestService(store *fakeStore, cache *fakeCache, bus *fakeBus) *BookingService {
	logger := zerolog.New(os.Stdout)
	restaurant := config.RestaurantConfig{
		OpenTime:        "12:00",
		CloseTime:       "13:30",
		SlotStepMinutes: 30,
		Tables:          10,
	}
	return NewBookingService(store, cache, bus, restaurant, &logger)
}

func validRequest() *models.BookingRequest {
	return &models.BookingRequest{
		TableID:   3,
		Date:      "2026-03-10",
		TimeSlot:  "19:30",
		Guests:    4,
		HasGuests: true,
		Phone:     "+79990001122",
		UserID:    "12345",
		UserName:  "Анна",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.BookingRequest)
		wantErr error
	}{
		{"valid", func(r *models.BookingRequest) {}, nil},
		{"missing table", func(r *models.BookingRequest) { r.TableID = 0 }, ErrMissingField},
		{"missing time", func(r *models.BookingRequest) { r.TimeSlot = "" }, ErrMissingField},
		{"missing guests", func(r *models.BookingRequest) { r.HasGuests = false }, ErrMissingField},
		{"zero guests", func(r *models.BookingRequest) { r.Guests = 0 }, ErrMissingField},
		{"negative guests", func(r *models.BookingRequest) { r.Guests = -3 }, ErrInvalidGuestCount},
		{"unparseable guests", func(r *models.BookingRequest) { r.Guests = math.NaN() }, ErrInvalidGuestCount},
		{"infinite guests", func(r *models.BookingRequest) { r.Guests = math.Inf(1) }, ErrInvalidGuestCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := Validate(req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCreateBooking(t *testing.T) {
	store := &fakeStore{}
	cache := &fakeCache{}
	bus := &fakeBus{}
	svc := newTestService(store, cache, bus)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local) }

	booking, err := svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), booking.ID)
	assert.Equal(t, int64(4), booking.Guests)
	assert.Equal(t, "2026-03-10", booking.BookingDate)
	require.NotNil(t, booking.BookingFor)
	assert.Equal(t, time.Date(2026, 3, 10, 19, 30, 0, 0, time.Local), *booking.BookingFor)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, []string{"2026-03-10"}, cache.invalidated)
	assert.Equal(t, []string{"booking_created"}, bus.published)
}

func TestCreateBookingRejectsInvalidWithoutInsert(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeCache{}, &fakeBus{})

	req := validRequest()
	req.TimeSlot = ""

	_, err := svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Empty(t, store.inserted)
}

func TestCreateBookingPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("disk I/O error")
	store := &fakeStore{insertErr: storeErr}
	bus := &fakeBus{}
	svc := newTestService(store, &fakeCache{}, bus)

	_, err := svc.CreateBooking(context.Background(), validRequest())
	assert.ErrorIs(t, err, storeErr)

	// Событие публикуется только после успешной вставки
	assert.Empty(t, bus.published)
}

func TestCreateBookingFractionalGuestsTruncated(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeCache{}, &fakeBus{})

	req := validRequest()
	req.Guests = 2.9

	booking, err := svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), booking.Guests)
}

func TestSlotsCacheMiss(t *testing.T) {
	store := &fakeStore{busy: map[string][]string{"2026-03-10": {"12:30", "13:00"}}}
	cache := &fakeCache{}
	svc := newTestService(store, cache, &fakeBus{})

	busy, free, err := svc.Slots(context.Background(), 2, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"12:30", "13:00"}, busy)
	assert.Equal(t, []string{"12:00", "13:30"}, free)

	// Результат закэширован
	cached, ok, _ := cache.GetBusySlots(context.Background(), 2, "2026-03-10")
	require.True(t, ok)
	assert.Equal(t, busy, cached)
}

func TestSlotsCacheHitSkipsStore(t *testing.T) {
	store := &fakeStore{busy: map[string][]string{"2026-03-10": {"12:00"}}}
	cache := &fakeCache{entries: map[string][]string{"2026-03-10": {"13:30"}}}
	svc := newTestService(store, cache, &fakeBus{})

	busy, free, err := svc.Slots(context.Background(), 2, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"13:30"}, busy)
	assert.Equal(t, []string{"12:00", "12:30", "13:00"}, free)
}

func TestSlotsCacheErrorFallsBackToStore(t *testing.T) {
	store := &fakeStore{busy: map[string][]string{"2026-03-10": {"12:00"}}}
	cache := &fakeCache{getErr: errors.New("redis down")}
	svc := newTestService(store, cache, &fakeBus{})

	busy, _, err := svc.Slots(context.Background(), 2, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"12:00"}, busy)
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots("12:00", "23:00", 30)
	require.Len(t, slots, 23)
	assert.Equal(t, "12:00", slots[0])
	assert.Equal(t, "22:30", slots[21])
	assert.Equal(t, "23:00", slots[22])
}
