// Package csvlist реализует HTTP-обработчик получения всех строк CSV-данных.
package csvlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/models"
)

// Service возвращает сохранённые строки.
type Service interface {
	GetData(ctx context.Context) ([]models.CsvRow, error)
}

// Handler обрабатывает GET /csv.
type Handler struct {
	log    *slog.Logger
	csvSvc Service
}

// New создает Handler.
func New(log *slog.Logger, csvSvc Service) *Handler {
	return &Handler{log: log, csvSvc: csvSvc}
}

// ServeHTTP godoc
// @Summary Список строк склада
// @Tags CSV
// @Produce  json
// @Success 200 {object} response.Response "Строки склада"
// @Failure 401 {object} response.Response "Требуется вход"
// @Failure 500 {object} response.Response "Внутренняя ошибка"
// @Router /api/v1/csv [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.csv.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rows, err := h.csvSvc.GetData(r.Context())
	if err != nil {
		log.Error("failed to get csv data", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	if rows == nil {
		rows = []models.CsvRow{}
	}

	log.Info("csv data listed", slog.Int("rows", len(rows)))
	render.JSON(w, r, response.OKWithData(rows))
}
