// Package models содержит доменные модели сервиса: пользователя,
// строку CSV-данных и покупку.
package models

import "time"

// Роли пользователя.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// LoginMethodPassword — вход по логину и паролю.
const LoginMethodPassword = "password"

// Статусы подписки пользователя.
const (
	SubscriptionNone     = "none"
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
	SubscriptionPastDue  = "past_due"
)

// User представляет учётную запись пользователя.
type User struct {
	ID                 int64     `json:"id"`
	OpenID             string    `json:"openId"`   // Внешний идентификатор, для локальных аккаунтов local_<username>_<unixms>
	Username           *string   `json:"username"` // Только для локальных аккаунтов
	PasswordHash       *string   `json:"-"`        // Только для локальных аккаунтов
	Name               string    `json:"name"`
	Email              *string   `json:"email"`
	LoginMethod        string    `json:"loginMethod"`
	Role               string    `json:"role"`
	StripeCustomerID   *string   `json:"stripeCustomerId"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	SubscriptionID     *string   `json:"subscriptionId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	LastSignedIn       time.Time `json:"lastSignedIn"`
}

// Str возвращает значение строкового указателя или пустую строку.
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
