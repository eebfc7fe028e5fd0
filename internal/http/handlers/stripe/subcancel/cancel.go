// Package subcancel реализует HTTP-обработчик отмены подписки в конце оплаченного периода.
package subcancel

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

// Service отменяет подписку.
type Service interface {
	CancelSubscription(ctx context.Context, user *models.User) error
}

// Handler обрабатывает POST /stripe/subscription/cancel.
type Handler struct {
	log        *slog.Logger
	billingSvc Service
}

// New создает Handler.
func New(log *slog.Logger, billingSvc Service) *Handler {
	return &Handler{log: log, billingSvc: billingSvc}
}

// ServeHTTP godoc
// @Summary Отмена подписки
// @Description Отменяет подписку в конце оплаченного периода
// @Tags Stripe
// @Produce  json
// @Success 200 {object} response.Response "Подписка будет отменена"
// @Failure 401 {object} response.Response "Требуется вход"
// @Failure 400 {object} response.Response "Нет активной подписки"
// @Failure 500 {object} response.Response "Ошибка Stripe"
// @Router /api/v1/stripe/subscription/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stripe.subcancel"

	user := middlewarectx.UserFromContext(r.Context())
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.billingSvc.CancelSubscription(r.Context(), user); err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("subscription set to cancel at period end")
	render.JSON(w, r, response.OKWithData(map[string]any{"success": true}))
}
