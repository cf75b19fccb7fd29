package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"soporte/internal/entities"
	apperrors "soporte/pkg/errors"
	"soporte/pkg/service"
	"soporte/pkg/utils"
)

// AccessTokenCookie - cookie, которую ставит основной хелпдеск после входа.
const AccessTokenCookie = "access_token"

type UserFinder interface {
	FindUser(ctx context.Context, id uint64, defaultPerPage int) (*entities.User, error)
}

type AuthMiddleware struct {
	jwtService     service.JWTService
	users          UserFinder
	defaultPerPage int
	loginURL       string
	logger         *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, users UserFinder, defaultPerPage int, loginURL string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:     jwtSvc,
		users:          users,
		defaultPerPage: defaultPerPage,
		loginURL:       loginURL,
		logger:         logger,
	}
}

// extractToken - сначала заголовок "Bearer <token>", затем cookie.
func extractToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", apperrors.ErrInvalidAuthHeader
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", apperrors.ErrEmptyAuthHeader
}

func (m *AuthMiddleware) authenticate(c echo.Context) (*entities.User, error) {
	tokenString, err := extractToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := m.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotAccess
	}

	user, err := m.users.FindUser(c.Request().Context(), claims.UserID, m.defaultPerPage)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	c.SetRequest(c.Request().WithContext(utils.WithUser(c.Request().Context(), user)))
	return user, nil
}

// Auth - для JSON-эндпоинтов: без валидного токена отвечает 401.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.authenticate(c)
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка аутентификации", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		m.logger.Debug("AuthMiddleware: Пользователь успешно аутентифицирован", zap.Uint64("userID", user.ID))
		return next(c)
	}
}

// StaffRequired - для страниц: анонимов и не-сотрудников отправляет на вход.
func (m *AuthMiddleware) StaffRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.authenticate(c)
		if err != nil {
			if !isAuthError(err) {
				return utils.ErrorResponse(c, err, m.logger)
			}
			return c.Redirect(http.StatusFound, m.loginRedirect(c))
		}
		if !user.IsStaff {
			m.logger.Info("AuthMiddleware: Доступ только для сотрудников", zap.Uint64("userID", user.ID))
			return c.Redirect(http.StatusFound, m.loginRedirect(c))
		}
		return next(c)
	}
}

func (m *AuthMiddleware) loginRedirect(c echo.Context) string {
	return m.loginURL + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
}

func isAuthError(err error) bool {
	for _, target := range []error{
		apperrors.ErrEmptyAuthHeader, apperrors.ErrInvalidAuthHeader, apperrors.ErrInvalidToken,
		apperrors.ErrInvalidSigningMethod, apperrors.ErrTokenExpired, apperrors.ErrTokenNotYetValid,
		apperrors.ErrTokenIsNotAccess, apperrors.ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
