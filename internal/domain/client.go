package domain

import "time"

// ClientSource канал, из которого пришёл клиент
type ClientSource string

const (
	ClientSourceManual    ClientSource = "manual"
	ClientSourceWebsite   ClientSource = "website"
	ClientSourceMessaging ClientSource = "messaging"
	ClientSourceReferral  ClientSource = "referral"
)

// Client клиент глэмпинга, телефон уникален
type Client struct {
	ID     int64
	Name   string
	Phone  string
	Email  string
	Source ClientSource

	CreatedAt time.Time
	UpdatedAt time.Time
}
