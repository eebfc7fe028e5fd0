// Package substatus реализует HTTP-обработчик статуса подписки.
package substatus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csv-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/models"
	"github.com/magabrotheeeer/csv-manager/internal/services/billing"
)

// Service возвращает статус подписки.
type Service interface {
	GetSubscriptionStatus(ctx context.Context, user *models.User) billing.ReadResult[billing.SubscriptionStatus]
}

// Handler обрабатывает GET /stripe/subscription.
// Ошибка провайдера не превращается в ошибку ответа: отдаётся статус "none".
type Handler struct {
	log        *slog.Logger
	billingSvc Service
}

// New создает Handler.
func New(log *slog.Logger, billingSvc Service) *Handler {
	return &Handler{log: log, billingSvc: billingSvc}
}

// ServeHTTP godoc
// @Summary Статус подписки
// @Description При недоступности Stripe возвращает статус none
// @Tags Stripe
// @Produce  json
// @Success 200 {object} response.Response "Статус подписки"
// @Failure 401 {object} response.Response "Требуется вход"
// @Router /api/v1/stripe/subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stripe.substatus"

	res := h.billingSvc.GetSubscriptionStatus(r.Context(), middlewarectx.UserFromContext(r.Context()))
	if res.Outcome == billing.OutcomeFailed {
		h.log.Warn("subscription status served from default",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}

	render.JSON(w, r, response.OKWithData(res.Value))
}
