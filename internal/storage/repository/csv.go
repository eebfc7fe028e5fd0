package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/csv-manager/internal/models"
)

// ListCsvData возвращает все строки в порядке добавления.
func (s *Storage) ListCsvData(ctx context.Context) ([]models.CsvRow, error) {
	const op = "storage.ListCsvData"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, product, quantity, price, created_at, updated_at FROM csv_data ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.CsvRow
	for rows.Next() {
		var r models.CsvRow
		if err := rows.Scan(&r.ID, &r.Product, &r.Quantity, &r.Price, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountCsvData возвращает количество строк.
func (s *Storage) CountCsvData(ctx context.Context) (int, error) {
	const op = "storage.CountCsvData"
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM csv_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// csvInsertBatch — строк в одном INSERT. Три параметра на строку держат запрос
// ниже предела протокола PostgreSQL в 65535 параметров.
const csvInsertBatch = 5000

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertCsvBatches записывает rows пачками не больше csvInsertBatch.
func insertCsvBatches(ctx context.Context, ex execer, rows []models.CsvRow) error {
	for start := 0; start < len(rows); start += csvInsertBatch {
		end := min(start+csvInsertBatch, len(rows))
		query, args := insertCsvQuery(rows[start:end])
		if _, err := ex.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func insertCsvQuery(rows []models.CsvRow) (string, []any) {
	var b strings.Builder
	b.WriteString(`INSERT INTO csv_data (product, quantity, price) VALUES `)
	args := make([]any, 0, len(rows)*3)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 3
		fmt.Fprintf(&b, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, r.Product, r.Quantity, r.Price.Round(2))
	}
	return b.String(), args
}

// InsertCsvData добавляет строки к существующим.
func (s *Storage) InsertCsvData(ctx context.Context, rows []models.CsvRow) error {
	const op = "storage.InsertCsvData"
	if err := insertCsvBatches(ctx, s.DB, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReplaceCsvData удаляет все строки и записывает новые в одной транзакции.
func (s *Storage) ReplaceCsvData(ctx context.Context, rows []models.CsvRow) error {
	const op = "storage.ReplaceCsvData"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM csv_data`); err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}
	if err := insertCsvBatches(ctx, tx, rows); err != nil {
		return fmt.Errorf("%s: insert: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
