package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csv-manager/internal/http/response"
	"github.com/magabrotheeeer/csv-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/models"
)

// MsgLoginRequired возвращается на защищённых маршрутах без сессии.
const MsgLoginRequired = "Please login"

// UserLookup находит пользователя по внешнему идентификатору из токена.
type UserLookup interface {
	GetUserByOpenID(ctx context.Context, openID string) (*models.User, error)
}

// SessionMiddleware читает cookie сессии и, если токен валиден, кладёт пользователя в контекст.
// Отсутствующая или невалидная сессия не прерывает запрос.
func SessionMiddleware(log *slog.Logger, maker jwt.Maker, users UserLookup, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, err := maker.ParseToken(cookie.Value)
			if err != nil {
				log.Debug("invalid session token", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByOpenID(r.Context(), claims.OpenID)
			if err != nil {
				log.Warn("session user not found", slog.String("open_id", claims.OpenID), sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireUser отвечает 401, если в контексте нет пользователя.
func RequireUser(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFromContext(r.Context()) == nil {
				log.Info("unauthenticated request rejected",
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(MsgLoginRequired))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
