package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы покупки.
const (
	PurchasePending   = "pending"
	PurchaseSucceeded = "succeeded"
	PurchaseFailed    = "failed"
	PurchaseRefunded  = "refunded"
)

// DefaultCurrency используется, когда провайдер не вернул валюту.
const DefaultCurrency = "jpy"

// Purchase — разовая покупка, подтверждённая платёжным провайдером.
type Purchase struct {
	ID                    int64           `json:"id"`
	UserID                int64           `json:"userId"`
	StripePaymentIntentID string          `json:"stripePaymentIntentId"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Status                string          `json:"status"`
	ProductName           *string         `json:"productName"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}
