package routes

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"soporte/pkg/config"
)

// runStaticRouter - раздача статики и медиа; только для DEBUG.
func runStaticRouter(e *echo.Echo, cfg config.HelpdeskConfig, logger *zap.Logger) {
	for prefix, root := range map[string]string{cfg.StaticURL: cfg.StaticRoot, cfg.MediaURL: cfg.MediaRoot} {
		if prefix == "" || root == "" {
			continue
		}
		absPath, err := filepath.Abs(root)
		if err != nil {
			logger.Warn("не удалось получить абсолютный путь", zap.String("root", root), zap.Error(err))
			continue
		}
		e.Static(strings.TrimSuffix(prefix, "/"), absPath)
		logger.Debug("статика подключена", zap.String("prefix", prefix), zap.String("root", absPath))
	}
}

// runUpstreamRouter отдаёт все остальные пути основному хелпдеску.
// Без HELPDESK_UPSTREAM_URL они отвечают 404.
func runUpstreamRouter(e *echo.Echo, upstreamURL string, logger *zap.Logger) error {
	if upstreamURL == "" {
		logger.Warn("HELPDESK_UPSTREAM_URL не задан, прочие маршруты недоступны")
		return nil
	}

	target, err := url.Parse(upstreamURL)
	if err != nil {
		return fmt.Errorf("неверный HELPDESK_UPSTREAM_URL %q: %w", upstreamURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return fmt.Errorf("HELPDESK_UPSTREAM_URL %q должен быть абсолютным адресом", upstreamURL)
	}

	proxy := echomw.ProxyWithConfig(echomw.ProxyConfig{
		Balancer: echomw.NewRoundRobinBalancer([]*echomw.ProxyTarget{{Name: "helpdesk", URL: target}}),
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Error("ошибка проксирования в хелпдеск", zap.String("uri", c.Request().RequestURI), zap.Error(err))
			return echo.NewHTTPError(http.StatusBadGateway, "хелпдеск недоступен")
		},
	})
	e.Any("/*", func(echo.Context) error { return echo.ErrNotFound }, proxy)
	return nil
}
