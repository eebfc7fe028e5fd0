// Package csvdownload реализует HTTP-обработчик выгрузки данных в CSV.
//
// Ответ содержит CSV-текст и имя файла; сохранение файла остаётся на стороне клиента.
package csvdownload

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/services/csvdata"
)

// Service формирует выгрузку.
type Service interface {
	Download(ctx context.Context) (csvdata.Export, error)
}

// Handler обрабатывает GET /csv/download.
type Handler struct {
	log    *slog.Logger
	csvSvc Service
}

// New создает Handler.
func New(log *slog.Logger, csvSvc Service) *Handler {
	return &Handler{log: log, csvSvc: csvSvc}
}

// ServeHTTP godoc
// @Summary Выгрузка склада в CSV
// @Tags CSV
// @Produce  json
// @Success 200 {object} response.Response "CSV-текст с заголовком Product,Quantity,Price"
// @Failure 401 {object} response.Response "Требуется вход"
// @Failure 500 {object} response.Response "Внутренняя ошибка"
// @Router /api/v1/csv/download [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.csv.download"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	export, err := h.csvSvc.Download(r.Context())
	if err != nil {
		log.Error("failed to build csv export", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(export))
}
