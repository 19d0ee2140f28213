package service

import "errors"

var (
	// ErrMissingField rejects submissions without table_id, time or guests.
	ErrMissingField = errors.New("Недостаточно данных: требуется table, time и guests")

	// ErrInvalidGuestCount rejects a guest count that is not a positive
	// finite number.
	ErrInvalidGuestCount = errors.New("Некорректное количество гостей")
)
