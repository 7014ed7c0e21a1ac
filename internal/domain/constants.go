package domain

import "time"

// Значения по умолчанию
const (
	DefaultGuestCount       = 1
	DefaultCurrency         = "KZT"
	DefaultPaymentLinkTTL   = 24 * time.Hour
	DefaultPairingTimeout   = 120 * time.Second
	PlaceholderEmailDomain  = "no-email.glamping.local"
	DefaultSessionListLimit = 50
	MaxListLimit            = 500
)

// Ограничения бизнес-валидации
const (
	MaxNotesLength              = 2000
	MaxCancellationReasonLength = 500
	MaxManualMessageLength      = 4096
)

// DateFormat формат дат заезда и выезда
const DateFormat = "2006-01-02"
