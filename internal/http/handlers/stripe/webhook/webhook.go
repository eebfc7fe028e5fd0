// Package webhook реализует HTTP-обработчик вебхуков Stripe.
//
// Тело читается целиком и без изменений передаётся на проверку подписи,
// поэтому обработчик не использует JSON-декодер.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/services/billing"
)

const (
	// MaxBodyBytes — предельный размер тела вебхука.
	MaxBodyBytes = 64 << 10
	// SignatureHeader — заголовок с подписью Stripe.
	SignatureHeader = "Stripe-Signature"
)

// Service применяет событие провайдера.
type Service interface {
	HandleWebhookEvent(ctx context.Context, payload []byte, signature string) (billing.WebhookResult, error)
}

// Handler обрабатывает POST /api/stripe/webhook.
type Handler struct {
	log        *slog.Logger
	billingSvc Service
}

// New создает Handler.
func New(log *slog.Logger, billingSvc Service) *Handler {
	return &Handler{log: log, billingSvc: billingSvc}
}

// ServeHTTP godoc
// @Summary Вебхук Stripe
// @Description Проверяет подпись Stripe-Signature и применяет событие
// @Tags Stripe
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись события"
// @Success 200 {object} response.Response "Событие принято"
// @Failure 400 {object} response.Response "Неверная подпись"
// @Failure 413 {object} response.Response "Слишком большое тело"
// @Failure 500 {object} response.Response "Ошибка обработки"
// @Router /api/stripe/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stripe.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusRequestEntityTooLarge)
		render.JSON(w, r, response.Error("request body too large"))
		return
	}

	result, err := h.billingSvc.HandleWebhookEvent(r.Context(), payload, r.Header.Get(SignatureHeader))
	if err != nil {
		log.Warn("webhook rejected", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, result)
}
