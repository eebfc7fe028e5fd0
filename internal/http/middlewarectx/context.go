// Package middlewarectx содержит HTTP middleware сессии пользователя и
// ограничения частоты запросов, а также доступ к пользователю из контекста.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/csv-manager/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для текущего пользователя в контексте.
const User Key = "user"

// ContextWithUser кладёт пользователя в контекст.
func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, User, u)
}

// UserFromContext возвращает пользователя из контекста или nil.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(User).(*models.User)
	return u
}
