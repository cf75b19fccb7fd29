package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"soporte/internal/entities"
	"soporte/pkg/contextkeys"
	apperrors "soporte/pkg/errors"
)

// Ctx - контекст запроса с таймаутом в секундах.
func Ctx(c echo.Context, seconds int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), time.Duration(seconds)*time.Second)
}

// GetUserFromCtx достаёт пользователя, положенного в контекст AuthMiddleware.
func GetUserFromCtx(ctx context.Context) (*entities.User, error) {
	user, ok := ctx.Value(contextkeys.UserKey).(*entities.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUserIDNotFoundInContext
	}
	return user, nil
}

// WithUser кладёт пользователя и его id в контекст.
func WithUser(ctx context.Context, user *entities.User) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, user.ID)
	return context.WithValue(ctx, contextkeys.UserKey, user)
}
