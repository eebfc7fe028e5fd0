package csvupload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/csv-manager/internal/apperr"
	"github.com/magabrotheeeer/csv-manager/internal/services/csvdata"
)

type CsvServiceMock struct {
	mock.Mock
}

func (m *CsvServiceMock) Upload(ctx context.Context, content string) (int, error) {
	args := m.Called(ctx, content)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUploadHandler_ServeHTTP(t *testing.T) {
	const content = "Product,Quantity,Price\nTestProduct1,10,1000\nTestProduct2,20,2000"

	tests := []struct {
		name           string
		body           string
		setup          func(m *CsvServiceMock)
		wantStatusCode int
		wantBody       string
	}{
		{
			name: "imported",
			body: `{"csvContent":"Product,Quantity,Price\nTestProduct1,10,1000\nTestProduct2,20,2000"}`,
			setup: func(m *CsvServiceMock) {
				m.On("Upload", mock.Anything, content).Return(2, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"status":"OK","data":{"success":true,"rowsImported":2}}`,
		},
		{
			name: "rejected csv",
			body: `{"csvContent":"Product,Quantity,Price"}`,
			setup: func(m *CsvServiceMock) {
				m.On("Upload", mock.Anything, "Product,Quantity,Price").
					Return(0, apperr.Validation(csvdata.MsgTooShort)).Once()
			},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"status":"Error","error":"` + csvdata.MsgTooShort + `"}`,
		},
		{
			name:           "invalid json",
			body:           `csv`,
			setup:          func(_ *CsvServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "storage failure",
			body: `{"csvContent":"x"}`,
			setup: func(m *CsvServiceMock) {
				m.On("Upload", mock.Anything, "x").Return(0, errors.New("tx aborted")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(CsvServiceMock)
			tt.setup(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/csv/upload", strings.NewReader(tt.body))
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
