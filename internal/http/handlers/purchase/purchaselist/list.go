// Package purchaselist реализует HTTP-обработчик списка покупок текущего пользователя.
package purchaselist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csv-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/models"
)

// Service возвращает покупки пользователя.
type Service interface {
	ListPurchases(ctx context.Context, user *models.User) ([]models.Purchase, error)
}

// Handler обрабатывает GET /purchases.
type Handler struct {
	log        *slog.Logger
	billingSvc Service
}

// New создает Handler.
func New(log *slog.Logger, billingSvc Service) *Handler {
	return &Handler{log: log, billingSvc: billingSvc}
}

// ServeHTTP godoc
// @Summary История покупок пользователя
// @Tags Purchases
// @Produce  json
// @Success 200 {object} response.Response "Покупки, новые первыми"
// @Failure 401 {object} response.Response "Требуется вход"
// @Failure 500 {object} response.Response "Внутренняя ошибка"
// @Router /api/v1/purchases [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.list"

	user := middlewarectx.UserFromContext(r.Context())
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	purchases, err := h.billingSvc.ListPurchases(r.Context(), user)
	if err != nil {
		log.Error("failed to list purchases", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(purchases))
}
