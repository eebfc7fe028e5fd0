package paymentprovider

import (
	"encoding/json"
	"time"
)

// Режимы checkout-сессии.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// CheckoutRequest описывает одну позицию checkout-сессии и адреса возврата.
type CheckoutRequest struct {
	Mode              string
	ProductName       string
	Description       string
	UnitAmount        int64
	Currency          string
	Interval          string // только для ModeSubscription
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
	ClientReferenceID string
	Metadata          map[string]string
}

// SubscriptionInfo — сведения об активной подписке.
type SubscriptionInfo struct {
	ID                string
	Status            string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
}

// PaymentIntentInfo — запись истории платежей.
type PaymentIntentInfo struct {
	ID          string
	Amount      int64
	Currency    string
	Status      string
	Description string
	CreatedAt   time.Time
}

// Event — проверенное событие вебхука.
type Event struct {
	ID   string
	Type string
	Data json.RawMessage
}

// CheckoutSession — данные завершённой checkout-сессии.
type CheckoutSession struct {
	ID              string
	Mode            string
	CustomerID      string
	SubscriptionID  string
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
	Metadata        map[string]string
}

// Subscription — данные подписки из события.
type Subscription struct {
	ID         string
	CustomerID string
	Status     string
}

// PaymentIntent — данные платежа из события.
type PaymentIntent struct {
	ID         string
	CustomerID string
	Amount     int64
	Currency   string
}

// Charge — данные списания из события.
type Charge struct {
	ID              string
	PaymentIntentID string
}
