package models

const (
	// DefaultOpenTime и DefaultCloseTime границы сетки слотов ресторана
	DefaultOpenTime  = "12:00"
	DefaultCloseTime = "23:00"

	// DefaultSlotStepMinutes шаг сетки временных слотов
	DefaultSlotStepMinutes = 30

	// DefaultTableCount количество столиков, создаваемых при инициализации БД
	DefaultTableCount = 10

	// DispatcherQueueSize размер очереди уведомлений
	DispatcherQueueSize = 256

	// DefaultNotifyTimeout таймаут одного вызова Telegram API в секундах
	DefaultNotifyTimeout = 10

	// DefaultSlotCacheTTL время жизни кэша занятых слотов в секундах
	DefaultSlotCacheTTL = 60
)

// Sentinel strings used in operator notifications when a field is absent.
const (
	SentinelNoDate  = "не указана"
	SentinelNoValue = "не указан"
)
