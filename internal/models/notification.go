package models

// Notification kinds, in the order they are dispatched for one booking.
const (
	NotificationAdmin = "admin"
	NotificationUser  = "user"
)

// Notification is one outbound Telegram message queued after a successful
// insert. Best-effort: a lost notification never fails the booking.
type Notification struct {
	Kind      string `json:"kind"`
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	BookingID int64  `json:"booking_id"`
}
