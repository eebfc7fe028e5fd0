package csvlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/csv-manager/internal/models"
)

type CsvServiceMock struct {
	mock.Mock
}

func (m *CsvServiceMock) GetData(ctx context.Context) ([]models.CsvRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]models.CsvRow)
	return rows, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		rows           []models.CsvRow
		err            error
		wantStatusCode int
		wantContains   []string
	}{
		{
			name: "rows",
			rows: []models.CsvRow{
				{ID: 1, Product: "Laptop", Quantity: 10, Price: decimal.RequireFromString("120000.00")},
			},
			wantStatusCode: http.StatusOK,
			wantContains:   []string{`"product":"Laptop"`, `"quantity":10`},
		},
		{
			name:           "empty table renders empty list",
			wantStatusCode: http.StatusOK,
			wantContains:   []string{`"data":[]`},
		},
		{
			name:           "storage failure",
			err:            errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantContains:   []string{`"error":"internal error"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(CsvServiceMock)
			svc.On("GetData", mock.Anything).Return(tt.rows, tt.err).Once()

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/csv", nil))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			for _, s := range tt.wantContains {
				assert.Contains(t, rec.Body.String(), s)
			}
			svc.AssertExpectations(t)
		})
	}
}
