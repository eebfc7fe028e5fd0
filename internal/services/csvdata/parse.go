// Package csvdata реализует импорт и экспорт складских данных в формате CSV.
//
// Формат намеренно простой: поля разделяются запятой, кавычки не поддерживаются,
// поэтому значения с запятыми внутри не импортируются и не экспортируются корректно.
package csvdata

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/csv-manager/internal/apperr"
	"github.com/magabrotheeeer/csv-manager/internal/models"
)

// Сообщения об ошибках разбора.
const (
	MsgTooShort       = "CSV must have at least a header and one data row"
	MsgMissingColumns = "CSV must have Product, Quantity, and Price columns"
	MsgNoValidRows    = "No valid data rows found in CSV"
)

// Header — заголовок выгрузки.
const Header = "Product,Quantity,Price"

// Parse разбирает текст CSV. Строки с неверными полями пропускаются.
func Parse(content string) ([]models.CsvRow, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return nil, apperr.Validation(MsgTooShort)
	}

	productIdx, quantityIdx, priceIdx := -1, -1, -1
	for i, h := range strings.Split(lines[0], ",") {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "product":
			productIdx = i
		case "quantity":
			quantityIdx = i
		case "price":
			priceIdx = i
		}
	}
	if productIdx < 0 || quantityIdx < 0 || priceIdx < 0 {
		return nil, apperr.Validation(MsgMissingColumns)
	}

	rows := make([]models.CsvRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row, ok := parseLine(line, productIdx, quantityIdx, priceIdx)
		if ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, apperr.Validation(MsgNoValidRows)
	}
	return rows, nil
}

func parseLine(line string, productIdx, quantityIdx, priceIdx int) (models.CsvRow, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return models.CsvRow{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if productIdx >= len(fields) || quantityIdx >= len(fields) || priceIdx >= len(fields) {
		return models.CsvRow{}, false
	}

	product := fields[productIdx]
	if product == "" {
		return models.CsvRow{}, false
	}
	quantity, err := strconv.Atoi(fields[quantityIdx])
	if err != nil || quantity < 0 {
		return models.CsvRow{}, false
	}
	price, err := decimal.NewFromString(fields[priceIdx])
	if err != nil {
		return models.CsvRow{}, false
	}

	return models.CsvRow{
		Product:  product,
		Quantity: quantity,
		Price:    price.Round(2),
	}, true
}

// Format собирает CSV из строк: заголовок и по строке на запись, без завершающего перевода строки.
func Format(rows []models.CsvRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, Header)
	for _, r := range rows {
		lines = append(lines, r.Product+","+strconv.Itoa(r.Quantity)+","+r.Price.StringFixed(2))
	}
	return strings.Join(lines, "\n")
}
