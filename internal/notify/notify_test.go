package notify

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stolik/internal/events"
	"stolik/internal/models"
)

func TestAdminAlertAllFields(t *testing.T) {
	b := &models.Booking{
		ID:          42,
		TableID:     3,
		BookingDate: "2026-03-10",
		TimeSlot:    "19:30",
		Guests:      4,
		Phone:       "+79990001122",
		UserName:    "Анна",
		UserID:      "12345",
	}

	want := "📌 Новая бронь #42:\n" +
		"Столик: 3\n" +
		"Дата: 2026-03-10\n" +
		"Время: 19:30\n" +
		"Гостей: 4\n" +
		"Телефон: +79990001122\n" +
		"Пользователь: Анна (12345)"
	assert.Equal(t, want, AdminAlert(b))
}

func TestAdminAlertSentinels(t *testing.T) {
	b := &models.Booking{
		ID:       7,
		TableID:  1,
		TimeSlot: "12:00",
		Guests:   2,
	}

	text := AdminAlert(b)
	assert.Contains(t, text, "Дата: не указана")
	assert.Contains(t, text, "Телефон: не указан")
	assert.Contains(t, text, "Пользователь: не указан")
}

func TestUserConfirmation(t *testing.T) {
	withDate := &models.Booking{TableID: 3, BookingDate: "2026-03-10", TimeSlot: "19:30", Guests: 4}
	assert.Equal(t,
		"✅ Ваша бронь подтверждена: стол 3, 2026-03-10 в 19:30, гостей: 4.",
		UserConfirmation(withDate))

	withoutDate := &models.Booking{TableID: 1, TimeSlot: "12:00", Guests: 2}
	assert.Equal(t,
		"✅ Ваша бронь подтверждена: стол 1 в 12:00, гостей: 2.",
		UserConfirmation(withoutDate))
}

type captureQueue struct {
	notifications []models.Notification
	full          bool
}

func (q *captureQueue) Enqueue(n models.Notification) bool {
	if q.full {
		return false
	}
	q.notifications = append(q.notifications, n)
	return true
}

func bookingEvent(t *testing.T, booking models.Booking) *events.Event {
	t.Helper()
	raw, err := json.Marshal(events.BookingCreatedPayload{Booking: booking})
	require.NoError(t, err)
	return &events.Event{Type: events.EventBookingCreated, Payload: raw, CreatedAt: time.Now()}
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(os.Stdout)
	return &logger
}

func TestSubscriberEnqueuesAdminThenUser(t *testing.T) {
	queue := &captureQueue{}
	sub := NewBookingSubscriber(queue, 777, true, true, testLogger())

	booking := models.Booking{ID: 1, TableID: 2, TimeSlot: "18:00", Guests: 3, UserID: "555"}
	require.NoError(t, sub.Handle(bookingEvent(t, booking)))

	require.Len(t, queue.notifications, 2)
	assert.Equal(t, models.NotificationAdmin, queue.notifications[0].Kind)
	assert.Equal(t, int64(777), queue.notifications[0].ChatID)
	assert.Equal(t, models.NotificationUser, queue.notifications[1].Kind)
	assert.Equal(t, int64(555), queue.notifications[1].ChatID)
}

func TestSubscriberSkipsUserWithoutChatID(t *testing.T) {
	queue := &captureQueue{}
	sub := NewBookingSubscriber(queue, 777, true, true, testLogger())

	booking := models.Booking{ID: 1, TableID: 2, TimeSlot: "18:00", Guests: 3}
	require.NoError(t, sub.Handle(bookingEvent(t, booking)))

	require.Len(t, queue.notifications, 1)
	assert.Equal(t, models.NotificationAdmin, queue.notifications[0].Kind)
}

func TestSubscriberSkipsNonNumericUserID(t *testing.T) {
	queue := &captureQueue{}
	sub := NewBookingSubscriber(queue, 777, true, true, testLogger())

	booking := models.Booking{ID: 1, TableID: 2, TimeSlot: "18:00", Guests: 3, UserID: "web-anon"}
	require.NoError(t, sub.Handle(bookingEvent(t, booking)))

	require.Len(t, queue.notifications, 1)
}

func TestSubscriberWithoutAdminChat(t *testing.T) {
	queue := &captureQueue{}
	sub := NewBookingSubscriber(queue, 0, false, true, testLogger())

	booking := models.Booking{ID: 1, TableID: 2, TimeSlot: "18:00", Guests: 3, UserID: "555"}
	require.NoError(t, sub.Handle(bookingEvent(t, booking)))

	require.Len(t, queue.notifications, 1)
	assert.Equal(t, models.NotificationUser, queue.notifications[0].Kind)
}

func TestSubscriberDisabled(t *testing.T) {
	queue := &captureQueue{}
	sub := NewBookingSubscriber(queue, 777, true, false, testLogger())

	booking := models.Booking{ID: 1, TableID: 2, TimeSlot: "18:00", Guests: 3, UserID: "555"}
	require.NoError(t, sub.Handle(bookingEvent(t, booking)))
	assert.Empty(t, queue.notifications)
}

func TestSubscriberSurvivesFullQueue(t *testing.T) {
	queue := &captureQueue{full: true}
	sub := NewBookingSubscriber(queue, 777, true, true, testLogger())

	booking := models.Booking{ID: 1, TableID: 2, TimeSlot: "18:00", Guests: 3, UserID: "555"}
	require.NoError(t, sub.Handle(bookingEvent(t, booking)))
	assert.Empty(t, queue.notifications)
}

func TestDisabledTelegramClientSkipsSend(t *testing.T) {
	client, err := NewTelegramClient("", time.Second, testLogger())
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.SendMessage(123, "hello"))
}
