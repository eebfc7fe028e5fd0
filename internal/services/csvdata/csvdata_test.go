package csvdata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/csv-manager/internal/apperr"
	"github.com/magabrotheeeer/csv-manager/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListCsvData(ctx context.Context) ([]models.CsvRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CsvRow), args.Error(1)
}

func (m *RepoMock) CountCsvData(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) InsertCsvData(ctx context.Context, rows []models.CsvRow) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *RepoMock) ReplaceCsvData(ctx context.Context, rows []models.CsvRow) error {
	return m.Called(ctx, rows).Error(0)
}

type RecorderMock struct {
	mock.Mock
}

func (m *RecorderMock) RecordCsvImport(rows int, err error) { m.Called(rows, err != nil) }
func (m *RecorderMock) RecordWebhookEvent(eventType string) { m.Called(eventType) }
func (m *RecorderMock) RecordAuthAttempt(op string, ok bool) { m.Called(op, ok) }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestService_Upload(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		setupMocks func(r *RepoMock, rec *RecorderMock)
		wantRows   int
		wantKind   apperr.Kind
		wantErr    bool
	}{
		{
			name:    "replaces data",
			content: "Product,Quantity,Price\nWidget,5,10.5\nGadget,1,2",
			setupMocks: func(r *RepoMock, rec *RecorderMock) {
				r.On("ReplaceCsvData", mock.Anything, mock.MatchedBy(func(rows []models.CsvRow) bool {
					return len(rows) == 2 && rows[0].Product == "Widget" && rows[1].Product == "Gadget"
				})).Return(nil).Once()
				rec.On("RecordCsvImport", 2, false).Once()
			},
			wantRows: 2,
		},
		{
			name:    "invalid csv does not touch storage",
			content: "Product,Quantity\nWidget,5",
			setupMocks: func(_ *RepoMock, rec *RecorderMock) {
				rec.On("RecordCsvImport", 0, true).Once()
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:    "storage failure",
			content: "Product,Quantity,Price\nWidget,5,1",
			setupMocks: func(r *RepoMock, rec *RecorderMock) {
				r.On("ReplaceCsvData", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
				rec.On("RecordCsvImport", 0, true).Once()
			},
			wantErr:  true,
			wantKind: apperr.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			rec := new(RecorderMock)
			tt.setupMocks(repo, rec)

			n, err := New(newNoopLogger(), repo, rec).Upload(context.Background(), tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantRows, n)
			}
			repo.AssertExpectations(t)
			rec.AssertExpectations(t)
		})
	}
}

func TestService_GetData_SeedsEmptyTable(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountCsvData", mock.Anything).Return(0, nil).Once()
	repo.On("InsertCsvData", mock.Anything, SampleRows()).Return(nil).Once()
	repo.On("ListCsvData", mock.Anything).Return(SampleRows(), nil).Once()

	rows, err := New(newNoopLogger(), repo, nil).GetData(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	repo.AssertExpectations(t)
}

func TestService_GetData_DoesNotSeedNonEmptyTable(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountCsvData", mock.Anything).Return(1, nil).Once()
	repo.On("ListCsvData", mock.Anything).Return([]models.CsvRow{{Product: "X"}}, nil).Once()

	rows, err := New(newNoopLogger(), repo, nil).GetData(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	repo.AssertNotCalled(t, "InsertCsvData", mock.Anything, mock.Anything)
}

func TestService_Download(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountCsvData", mock.Anything).Return(0, nil).Once()
	repo.On("InsertCsvData", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("ListCsvData", mock.Anything).Return(SampleRows(), nil).Once()

	export, err := New(newNoopLogger(), repo, nil).Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExportFilename, export.Filename)
	assert.Equal(t,
		"Product,Quantity,Price\nLaptop,10,120000.00\nMouse,50,2500.00\nKeyboard,30,7500.00\nMonitor,15,30000.00\nUSB Cable,100,500.00",
		export.CSV)
}

func TestService_Download_StorageError(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountCsvData", mock.Anything).Return(0, errors.New("db down")).Once()

	_, err := New(newNoopLogger(), repo, nil).Download(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csvdata.Download")
}
