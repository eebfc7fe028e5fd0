// Package logout реализует HTTP-обработчик выхода.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csv-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csv-manager/internal/http/response"
)

// Handler удаляет cookie сессии. Запрос без сессии тоже считается успешным.
type Handler struct {
	log        *slog.Logger
	cookieName string
}

// New создает Handler.
func New(log *slog.Logger, cookieName string) *Handler {
	return &Handler{log: log, cookieName: cookieName}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Удаляет cookie сессии
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия закрыта"
// @Router /api/v1/auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	middlewarectx.ClearSessionCookie(w, r, h.cookieName)

	h.log.Info("session cleared",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.JSON(w, r, response.OKWithData(map[string]any{"success": true}))
}
