package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"soporte/internal/controllers"
	"soporte/internal/repositories"
	"soporte/internal/services"
	"soporte/pkg/config"
	"soporte/pkg/i18n"
	"soporte/pkg/metrics"
	"soporte/pkg/middleware"
	"soporte/pkg/service"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Tickets *zap.Logger
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, appMetrics *metrics.Metrics, cfg *config.Config) error {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 1. РЕПОЗИТОРИИ ---
	ticketRepo := repositories.NewTicketRepository(dbConn, loggers.Tickets)
	queueRepo := repositories.NewQueueRepository(dbConn, loggers.Tickets)
	userRepo := repositories.NewUserRepository(dbConn, loggers.Auth)
	savedSearchRepo := repositories.NewSavedSearchRepository(dbConn, loggers.Tickets)
	kbItemRepo := repositories.NewKBItemRepository(dbConn, loggers.Tickets)
	customFieldRepo := repositories.NewCustomFieldValueRepository(dbConn, loggers.Tickets)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. СЕРВИСЫ ---
	translator := i18n.New(cfg.Helpdesk.DefaultLanguage)
	queryService := services.NewTicketQueryService(ticketRepo, cacheRepo, appMetrics, loggers.Tickets, cfg.Helpdesk.QueryCacheTTL)
	ticketListService := services.NewTicketListService(
		queryService, ticketRepo, queueRepo, userRepo, savedSearchRepo, kbItemRepo, customFieldRepo,
		translator, appMetrics, loggers.Tickets,
		services.TicketListOptions{
			SearchIsCaseSensitive: cfg.Postgres.SearchIsCaseSensitive(),
			ExportMaxRows:         cfg.Helpdesk.ExportMaxRows,
		},
	)

	// --- 3. КОНТРОЛЛЕРЫ ---
	authMW := middleware.NewAuthMiddleware(jwtSvc, userRepo, cfg.Helpdesk.DefaultTicketsPerPage, cfg.Helpdesk.LoginURL, loggers.Auth)
	ticketListCtrl := controllers.NewTicketListController(ticketListService, translator, cfg.Helpdesk.PerQueueStaffPermission, loggers.Tickets)

	// --- 4. РОУТЕРЫ ---
	runServiceRouter(e, appMetrics)
	runTicketListRouter(e, ticketListCtrl, authMW)
	if cfg.Helpdesk.Debug {
		runStaticRouter(e, cfg.Helpdesk, loggers.Main)
	}
	if err := runUpstreamRouter(e, cfg.Helpdesk.UpstreamURL, loggers.Main); err != nil {
		return err
	}

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
	return nil
}
