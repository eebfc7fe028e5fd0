package csvdata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/metrics"
	"github.com/magabrotheeeer/csv-manager/internal/models"
)

// ExportFilename — имя файла выгрузки.
const ExportFilename = "data.csv"

// Repository описывает хранилище CSV-данных.
type Repository interface {
	ListCsvData(ctx context.Context) ([]models.CsvRow, error)
	CountCsvData(ctx context.Context) (int, error)
	InsertCsvData(ctx context.Context, rows []models.CsvRow) error
	ReplaceCsvData(ctx context.Context, rows []models.CsvRow) error
}

// Export — результат выгрузки.
type Export struct {
	CSV      string `json:"csv"`
	Filename string `json:"filename"`
}

// Service управляет импортом и экспортом данных.
type Service struct {
	log     *slog.Logger
	repo    Repository
	metrics metrics.Recorder
}

// New создаёт Service.
func New(log *slog.Logger, repo Repository, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Service{log: log, repo: repo, metrics: rec}
}

// SampleRows — данные, которыми заполняется пустая таблица.
func SampleRows() []models.CsvRow {
	return []models.CsvRow{
		{Product: "Laptop", Quantity: 10, Price: decimal.RequireFromString("120000.00")},
		{Product: "Mouse", Quantity: 50, Price: decimal.RequireFromString("2500.00")},
		{Product: "Keyboard", Quantity: 30, Price: decimal.RequireFromString("7500.00")},
		{Product: "Monitor", Quantity: 15, Price: decimal.RequireFromString("30000.00")},
		{Product: "USB Cable", Quantity: 100, Price: decimal.RequireFromString("500.00")},
	}
}

func (s *Service) seedIfEmpty(ctx context.Context) error {
	const op = "csvdata.seedIfEmpty"
	n, err := s.repo.CountCsvData(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return nil
	}
	if err := s.repo.InsertCsvData(ctx, SampleRows()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("seeded sample csv data", slog.Int("rows", len(SampleRows())))
	return nil
}

// GetData возвращает все строки, предварительно заполнив пустую таблицу примерами.
func (s *Service) GetData(ctx context.Context) ([]models.CsvRow, error) {
	const op = "csvdata.GetData"
	if err := s.seedIfEmpty(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.repo.ListCsvData(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// Download формирует CSV-выгрузку всех строк.
func (s *Service) Download(ctx context.Context) (Export, error) {
	const op = "csvdata.Download"
	rows, err := s.GetData(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("%s: %w", op, err)
	}
	return Export{CSV: Format(rows), Filename: ExportFilename}, nil
}

// Upload разбирает content и полностью заменяет им сохранённые данные.
func (s *Service) Upload(ctx context.Context, content string) (rowsImported int, err error) {
	const op = "csvdata.Upload"
	defer func() { s.metrics.RecordCsvImport(rowsImported, err) }()

	rows, err := Parse(content)
	if err != nil {
		return 0, err
	}
	if err := s.repo.ReplaceCsvData(ctx, rows); err != nil {
		s.log.Error("failed to replace csv data", sl.Op(op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(rows), nil
}
