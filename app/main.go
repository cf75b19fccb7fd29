package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"soporte/internal/routes"
	"soporte/pkg/config"
	"soporte/pkg/database/postgresql"
	apperrors "soporte/pkg/errors"
	applogger "soporte/pkg/logger"
	"soporte/pkg/metrics"
	"soporte/pkg/middleware"
	"soporte/pkg/render"
	"soporte/pkg/service"
	"soporte/pkg/utils"
	"soporte/pkg/validation"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer func() { _ = logger.Sync() }()

	e := echo.New()
	e.HideBanner = true

	// 2. Middleware
	e.Use(middleware.RequestID())
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.RequestLogger(logger))

	// 3. Валидатор и шаблоны
	e.Validator = validation.New()
	renderer, err := render.NewRenderer(cfg.Helpdesk.TemplateDir, cfg.Helpdesk.Debug)
	if err != nil {
		logger.Fatal("не удалось загрузить шаблоны", zap.Error(err), zap.String("dir", cfg.Helpdesk.TemplateDir))
	}
	e.Renderer = renderer

	// 4. Базы данных
	ctx := context.Background()
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		// кеш запросов необязателен: без Redis запросы просто пересчитываются
		logger.Warn("Redis недоступен", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	// 5. Сервисы и роуты
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)
	loggers := &routes.Loggers{
		Main:    logger,
		Auth:    logger.Named("auth"),
		Tickets: logger.Named("tickets"),
	}
	if err := routes.InitRouter(e, dbConn, redisClient, jwtSvc, loggers, metrics.New(), cfg); err != nil {
		logger.Fatal("не удалось создать маршруты", zap.Error(err))
	}

	// 6. Запуск и остановка по сигналу
	go func() {
		logger.Info("Сервер запущен", zap.String("port", cfg.Server.Port), zap.Bool("debug", cfg.Helpdesk.Debug))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
}
