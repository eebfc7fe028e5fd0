// Package checkout реализует HTTP-обработчик создания платёжной сессии.
//
// Адрес возврата строится от заголовка Origin запроса; без него используется
// адрес из конфигурации.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/csv-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/models"
	"github.com/magabrotheeeer/csv-manager/internal/services/billing"
)

// Request — выбранный товар каталога.
type Request struct {
	ProductKey string `json:"productKey" validate:"required,oneof=CSV_EXPORT_PREMIUM CSV_SUBSCRIPTION"`
}

// Service создаёт сессию оплаты.
type Service interface {
	CreateCheckoutSession(ctx context.Context, key billing.ProductKey, user *models.User, origin string) (string, error)
}

// Handler обрабатывает POST /stripe/checkout.
type Handler struct {
	log        *slog.Logger
	billingSvc Service
	validate   *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, billingSvc Service) *Handler {
	return &Handler{
		log:        log,
		billingSvc: billingSvc,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создание сессии оплаты
// @Description Возвращает URL страницы оплаты Stripe для выбранного товара
// @Tags Stripe
// @Accept  json
// @Produce  json
// @Param request body Request true "Ключ товара каталога"
// @Success 200 {object} response.Response "URL сессии оплаты"
// @Failure 400 {object} response.Response "Некорректное тело запроса"
// @Failure 401 {object} response.Response "Требуется вход"
// @Failure 422 {object} response.Response "Неизвестный товар"
// @Failure 500 {object} response.Response "Ошибка Stripe"
// @Router /api/v1/stripe/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stripe.checkout"

	user := middlewarectx.UserFromContext(r.Context())
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	key, err := billing.ParseProductKey(req.ProductKey)
	if err != nil {
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	url, err := h.billingSvc.CreateCheckoutSession(r.Context(), key, user, r.Header.Get("Origin"))
	if err != nil {
		log.Error("failed to create checkout session", slog.String("product_key", req.ProductKey), sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("checkout session created", slog.String("product_key", req.ProductKey))
	render.JSON(w, r, response.OKWithData(map[string]string{"url": url}))
}
