package billing

import (
	"github.com/magabrotheeeer/csv-manager/internal/apperr"
)

// ProductKey — ключ товара в каталоге.
type ProductKey string

const (
	ProductCSVExportPremium ProductKey = "CSV_EXPORT_PREMIUM"
	ProductCSVSubscription  ProductKey = "CSV_SUBSCRIPTION"
)

// Mode — способ оплаты товара.
type Mode int

const (
	ModeOneTime Mode = iota + 1
	ModeRecurring
)

// Product — позиция каталога. Суммы в минимальных единицах валюты.
type Product struct {
	Key         ProductKey
	Name        string
	Description string
	Amount      int64
	Currency    string
	Mode        Mode
	Interval    string
}

var catalog = map[ProductKey]Product{
	ProductCSVExportPremium: {
		Key:         ProductCSVExportPremium,
		Name:        "CSV Export Premium",
		Description: "プレミアムCSVエクスポート機能へのアクセス",
		Amount:      1000,
		Currency:    "jpy",
		Mode:        ModeOneTime,
	},
	ProductCSVSubscription: {
		Key:         ProductCSVSubscription,
		Name:        "CSV Manager Pro",
		Description: "月額サブスクリプション - 無制限のCSV操作",
		Amount:      500,
		Currency:    "jpy",
		Mode:        ModeRecurring,
		Interval:    "month",
	},
}

// MsgUnknownProduct возвращается для ключа вне каталога.
const MsgUnknownProduct = "Unknown product"

// ParseProductKey проверяет, что s — ключ из каталога.
func ParseProductKey(s string) (ProductKey, error) {
	key := ProductKey(s)
	if _, ok := catalog[key]; !ok {
		return "", apperr.Validation(MsgUnknownProduct)
	}
	return key, nil
}

// Lookup возвращает товар по ключу.
func Lookup(key ProductKey) (Product, bool) {
	p, ok := catalog[key]
	return p, ok
}
