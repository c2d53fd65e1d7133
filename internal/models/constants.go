package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	StepSelectService  = "select_service"
	StepSelectProvider = "select_provider"
	StepSelectDateTime = "select_datetime"
	StepEnterContact   = "enter_contact"
	StepSubmitted      = "submitted"
)

const (
	// DefaultStepMinutes размер шага сетки слотов по умолчанию
	DefaultStepMinutes = 30

	// DefaultSessionTTL время жизни сессии бронирования в Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultMaxBookingDays горизонт бронирования по умолчанию
	DefaultMaxBookingDays = 90

	// DefaultStoreTimeoutSeconds таймаут обращения к хранилищу
	DefaultStoreTimeoutSeconds = 5

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 20

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах
)

// DateFormat is the canonical calendar-date layout used in storage and the API.
const DateFormat = "2006-01-02"
