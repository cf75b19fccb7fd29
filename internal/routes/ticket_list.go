package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"soporte/internal/controllers"
	"soporte/pkg/metrics"
	"soporte/pkg/middleware"
	"soporte/pkg/utils"
)

func runTicketListRouter(e *echo.Echo, ctrl *controllers.TicketListController, authMW *middleware.AuthMiddleware) {
	e.GET(controllers.TicketListURL, ctrl.Tickets, authMW.StaffRequired)
	e.POST(controllers.TicketListURL, ctrl.Tickets, authMW.StaffRequired)
	e.GET(controllers.DatatablesURL, ctrl.DatatablesTicketList, authMW.Auth)
	e.GET(controllers.ExportURL, ctrl.ExportTickets, authMW.StaffRequired)
}

func runServiceRouter(e *echo.Echo, appMetrics *metrics.Metrics) {
	e.GET("/metrics", echo.WrapHandler(appMetrics.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return utils.SuccessResponse(c, nil, "ok", http.StatusOK)
	})
}
