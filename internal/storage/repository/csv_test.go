package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/csv-manager/internal/models"
)

func TestInsertCsvQuery(t *testing.T) {
	query, args := insertCsvQuery([]models.CsvRow{
		{Product: "Laptop", Quantity: 10, Price: decimal.RequireFromString("120000.004")},
		{Product: "Mouse", Quantity: 50, Price: decimal.RequireFromString("2500")},
	})

	assert.Equal(t, `INSERT INTO csv_data (product, quantity, price) VALUES ($1, $2, $3), ($4, $5, $6)`, query)
	require.Len(t, args, 6)
	assert.Equal(t, "Laptop", args[0])
	assert.Equal(t, 10, args[1])
	assert.True(t, decimal.RequireFromString("120000.00").Equal(args[2].(decimal.Decimal)))
}

type recordingExecer struct {
	params []int
	failAt int
}

func (e *recordingExecer) ExecContext(_ context.Context, _ string, args ...any) (sql.Result, error) {
	e.params = append(e.params, len(args))
	if e.failAt > 0 && len(e.params) == e.failAt {
		return nil, errors.New("exec failed")
	}
	return nil, nil
}

func makeCsvRows(n int) []models.CsvRow {
	rows := make([]models.CsvRow, n)
	for i := range rows {
		rows[i] = models.CsvRow{Product: fmt.Sprintf("Item%d", i), Quantity: i, Price: decimal.NewFromInt(int64(i))}
	}
	return rows
}

func TestInsertCsvBatches(t *testing.T) {
	tests := []struct {
		name       string
		rows       int
		wantParams []int
	}{
		{name: "empty", rows: 0, wantParams: nil},
		{name: "single batch", rows: 2, wantParams: []int{6}},
		{name: "exact batch", rows: csvInsertBatch, wantParams: []int{csvInsertBatch * 3}},
		{name: "over protocol limit", rows: 30000, wantParams: []int{15000, 15000, 15000, 15000, 15000, 15000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &recordingExecer{}
			require.NoError(t, insertCsvBatches(context.Background(), ex, makeCsvRows(tt.rows)))
			assert.Equal(t, tt.wantParams, ex.params)
			for _, p := range ex.params {
				assert.LessOrEqual(t, p, 65535)
			}
		})
	}

	t.Run("stops on first failure", func(t *testing.T) {
		ex := &recordingExecer{failAt: 2}
		err := insertCsvBatches(context.Background(), ex, makeCsvRows(3*csvInsertBatch))
		require.Error(t, err)
		assert.Len(t, ex.params, 2)
	})
}

func TestStorage_ReplaceCsvData_LargeUpload(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, storage.ReplaceCsvData(ctx, makeCsvRows(30000)))

	n, err := storage.CountCsvData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30000, n)
}

func TestStorage_CsvData(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	n, err := storage.CountCsvData(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, storage.InsertCsvData(ctx, []models.CsvRow{
		{Product: "Old", Quantity: 1, Price: decimal.NewFromInt(1)},
	}))

	rows := []models.CsvRow{
		{Product: "Widget", Quantity: 5, Price: decimal.RequireFromString("10.50")},
		{Product: "Gadget", Quantity: 0, Price: decimal.RequireFromString("3")},
	}
	require.NoError(t, storage.ReplaceCsvData(ctx, rows))

	got, err := storage.ListCsvData(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Widget", got[0].Product)
	assert.Equal(t, "10.50", got[0].Price.StringFixed(2))
	assert.Equal(t, "Gadget", got[1].Product)
	assert.Equal(t, 0, got[1].Quantity)
}

func TestStorage_ReplaceCsvData_RollsBackOnFailure(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, storage.ReplaceCsvData(ctx, []models.CsvRow{
		{Product: "Keep", Quantity: 1, Price: decimal.NewFromInt(1)},
	}))

	// Отрицательное количество нарушает CHECK, вставка падает после DELETE.
	err := storage.ReplaceCsvData(ctx, []models.CsvRow{
		{Product: "Bad", Quantity: -1, Price: decimal.NewFromInt(1)},
	})
	require.Error(t, err)

	got, err := storage.ListCsvData(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Keep", got[0].Product)
}
