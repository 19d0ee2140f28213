package notify

import (
	"fmt"
	"strings"

	"stolik/internal/models"
)

// AdminAlert composes the message for the restaurant admin chat. Missing
// optional fields are rendered with the standard sentinels so the admin
// always sees the full field list.
func AdminAlert(b *models.Booking) string {
	date := b.BookingDate
	if date == "" {
		date = models.SentinelNoDate
	}
	phone := b.Phone
	if phone == "" {
		phone = models.SentinelNoValue
	}

	user := b.UserName
	if user == "" {
		user = models.SentinelNoValue
	}
	if b.UserID != "" {
		user = fmt.Sprintf("%s (%s)", user, b.UserID)
	}

	lines := []string{
		fmt.Sprintf("📌 Новая бронь #%d:", b.ID),
		fmt.Sprintf("Столик: %d", b.TableID),
		"Дата: " + date,
		"Время: " + b.TimeSlot,
		fmt.Sprintf("Гостей: %d", b.Guests),
		"Телефон: " + phone,
		"Пользователь: " + user,
	}
	return strings.Join(lines, "\n")
}

// UserConfirmation composes the confirmation sent back to the booking user.
// The date fragment is omitted when no date was supplied.
func UserConfirmation(b *models.Booking) string {
	date := ""
	if b.BookingDate != "" {
		date = ", " + b.BookingDate
	}
	return fmt.Sprintf("✅ Ваша бронь подтверждена: стол %d%s в %s, гостей: %d.",
		b.TableID, date, b.TimeSlot, b.Guests)
}
