// Package paymenthistory реализует HTTP-обработчик истории платежей у провайдера.
package paymenthistory

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

// Service возвращает историю платежей.
type Service interface {
	GetPaymentHistory(ctx context.Context, user *models.User) billing.ReadResult[[]billing.PaymentRecord]
}

// Handler обрабатывает GET /stripe/payments.
type Handler struct {
	log        *slog.Logger
	billingSvc Service
}

// New создает Handler.
func New(log *slog.Logger, billingSvc Service) *Handler {
	return &Handler{log: log, billingSvc: billingSvc}
}

// ServeHTTP godoc
// @Summary История платежей Stripe
// @Description При недоступности Stripe возвращает пустой список
// @Tags Stripe
// @Produce  json
// @Success 200 {object} response.Response "Платежи пользователя"
// @Failure 401 {object} response.Response "Требуется вход"
// @Router /api/v1/stripe/payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stripe.paymenthistory"

	res := h.billingSvc.GetPaymentHistory(r.Context(), middlewarectx.UserFromContext(r.Context()))
	if res.Outcome == billing.OutcomeFailed {
		h.log.Warn("payment history served from default",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
	records := res.Value
	if records == nil {
		records = []billing.PaymentRecord{}
	}

	render.JSON(w, r, response.OKWithData(records))
}
