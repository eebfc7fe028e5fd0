// Package csvupload реализует HTTP-обработчик загрузки CSV с полной заменой данных.
package csvupload

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
)

// MaxBodyBytes ограничивает размер тела запроса.
const MaxBodyBytes = 10 << 20

// Request — содержимое CSV-файла.
type Request struct {
	CsvContent string `json:"csvContent"`
}

// Service импортирует CSV-текст.
type Service interface {
	Upload(ctx context.Context, content string) (int, error)
}

// Handler обрабатывает POST /csv/upload.
type Handler struct {
	log    *slog.Logger
	csvSvc Service
}

// New создает Handler.
func New(log *slog.Logger, csvSvc Service) *Handler {
	return &Handler{log: log, csvSvc: csvSvc}
}

// ServeHTTP godoc
// @Summary Загрузка CSV
// @Description Полностью заменяет складские данные содержимым файла
// @Tags CSV
// @Accept  json
// @Produce  json
// @Param request body Request true "Текст CSV с заголовком Product,Quantity,Price"
// @Success 200 {object} response.Response "Количество загруженных строк"
// @Failure 400 {object} response.Response "Некорректный CSV"
// @Failure 401 {object} response.Response "Требуется вход"
// @Failure 500 {object} response.Response "Внутренняя ошибка"
// @Router /api/v1/csv/upload [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.csv.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	n, err := h.csvSvc.Upload(r.Context(), req.CsvContent)
	if err != nil {
		status, resp := response.FromError(err)
		if status >= http.StatusInternalServerError {
			log.Error("csv import failed", sl.Err(err))
		} else {
			log.Info("csv rejected", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("csv imported", slog.Int("rows", n))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"success":      true,
		"rowsImported": n,
	}))
}
