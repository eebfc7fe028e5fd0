// Package login реализует HTTP-обработчик входа по логину и паролю.
//
// При успешной проверке пароля устанавливается cookie сессии; при любой
// ошибке учётных данных клиент получает одно и то же сообщение.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/csv-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/services/auth"
)

// Request — учётные данные пользователя.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service описывает бизнес-логику входа.
type Service interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log        *slog.Logger
	authSvc    Service
	validate   *validator.Validate
	cookieName string
	sessionTTL time.Duration
}

// New создает Handler.
func New(log *slog.Logger, authSvc Service, cookieName string, sessionTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		authSvc:    authSvc,
		validate:   validator.New(),
		cookieName: cookieName,
		sessionTTL: sessionTTL,
	}
}

// ServeHTTP godoc
// @Summary Вход по логину и паролю
// @Description Проверяет пароль и выставляет cookie сессии
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Логин и пароль"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.Response "Некорректное тело запроса"
// @Failure 401 {object} response.Response "Неверный логин или пароль"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 429 {object} response.Response "Слишком много запросов с адреса"
// @Router /api/v1/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	sess, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		status, resp := response.FromError(err)
		log.Warn("login failed", slog.String("username", req.Username), sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	middlewarectx.SetSessionCookie(w, r, h.cookieName, sess.Token, h.sessionTTL)

	log.Info("login success", slog.Int64("user_id", sess.User.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"success": true,
		"user": map[string]any{
			"id":       sess.User.ID,
			"username": sess.User.Username,
			"name":     sess.User.Name,
		},
	}))
}
