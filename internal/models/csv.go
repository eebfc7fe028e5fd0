package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CsvRow — строка складских данных.
type CsvRow struct {
	ID        int64           `json:"id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
