package csvdownload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/csv-manager/internal/services/csvdata"
)

type CsvServiceMock struct {
	mock.Mock
}

func (m *CsvServiceMock) Download(ctx context.Context) (csvdata.Export, error) {
	args := m.Called(ctx)
	return args.Get(0).(csvdata.Export), args.Error(1)
}

func TestDownloadHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("export", func(t *testing.T) {
		svc := new(CsvServiceMock)
		svc.On("Download", mock.Anything).
			Return(csvdata.Export{CSV: "Product,Quantity,Price\nMouse,50,2500.00", Filename: "data.csv"}, nil).Once()

		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/csv/download", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"status":"OK","data":{"csv":"Product,Quantity,Price\nMouse,50,2500.00","filename":"data.csv"}}`,
			rec.Body.String())
	})

	t.Run("failure", func(t *testing.T) {
		svc := new(CsvServiceMock)
		svc.On("Download", mock.Anything).Return(csvdata.Export{}, errors.New("db down")).Once()

		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/csv/download", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
