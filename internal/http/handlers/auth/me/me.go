// Package me реализует HTTP-обработчик получения текущего пользователя.
package me

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

// Service возвращает актуальную запись пользователя.
type Service interface {
	Me(ctx context.Context, userID int64) (*models.User, error)
}

// Handler отдаёт пользователя сессии или null для анонимного запроса.
type Handler struct {
	log     *slog.Logger
	authSvc Service
}

// New создает Handler.
func New(log *slog.Logger, authSvc Service) *Handler {
	return &Handler{log: log, authSvc: authSvc}
}

// Response — ответ с пользователем; User равен nil без сессии.
type Response struct {
	Status string       `json:"status"`
	Data   *models.User `json:"data"`
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Возвращает пользователя сессии или null без сессии
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response{data=Response} "Пользователь или null"
// @Failure 500 {object} response.Response "Внутренняя ошибка"
// @Router /api/v1/auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var userID int64
	if u := middlewarectx.UserFromContext(r.Context()); u != nil {
		userID = u.ID
	}

	user, err := h.authSvc.Me(r.Context(), userID)
	if err != nil {
		status, resp := response.FromError(err)
		log.Error("failed to load current user", sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, Response{Status: response.StatusOK, Data: user})
}
