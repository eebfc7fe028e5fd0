// Package register реализует HTTP-обработчик регистрации по логину и паролю.
//
// После успешной регистрации пользователю сразу выдаётся cookie сессии.
package register

import (
	"context"
	"encoding/json"
	"errors"
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

// Request — входные данные регистрации. Name и Email необязательны.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
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
// @Summary Регистрация пользователя
// @Description Создаёт пользователя по логину и паролю и сразу выставляет cookie сессии
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Логин (3-64 символа), пароль (6-128 символов), имя и email"
// @Success 200 {object} response.Response "Пользователь создан, сессия открыта"
// @Failure 400 {object} response.Response "Некорректное тело запроса"
// @Failure 409 {object} response.Response "Логин уже занят"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 429 {object} response.Response "Слишком много запросов с адреса"
// @Router /api/v1/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request"))
			return
		}
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	sess, err := h.authSvc.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
	})
	if err != nil {
		status, resp := response.FromError(err)
		log.Error("registration failed", slog.String("username", req.Username), sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	middlewarectx.SetSessionCookie(w, r, h.cookieName, sess.Token, h.sessionTTL)

	log.Info("user registered", slog.Int64("user_id", sess.User.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"success": true,
		"user": map[string]any{
			"id":       sess.User.ID,
			"username": sess.User.Username,
			"name":     sess.User.Name,
		},
	}))
}
