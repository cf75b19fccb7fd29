package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"soporte/internal/dto"
	"soporte/internal/services"
	apperrors "soporte/pkg/errors"
	"soporte/pkg/i18n"
	"soporte/pkg/utils"
)

const (
	TicketListTemplate = "soporte/ticket_list.html"
	TicketListURL      = "/tickets/"
	exportSheet        = "Tickets"

	// Токен может быть в стандартном base64 и содержать "/", поэтому хвост пути целиком.
	DatatablesURL   = "/datatables_ticket_list/*"
	ExportURL       = "/tickets/export/*"
	queryTokenParam = "*"

	datatablesTimeoutSeconds = 15
	exportTimeoutSeconds     = 60
)

type TicketListController struct {
	ticketListService       services.TicketListServiceInterface
	translator              *i18n.Translator
	perQueueStaffPermission bool
	logger                  *zap.Logger
}

func NewTicketListController(
	ticketListService services.TicketListServiceInterface,
	translator *i18n.Translator,
	perQueueStaffPermission bool,
	logger *zap.Logger,
) *TicketListController {
	return &TicketListController{
		ticketListService:       ticketListService,
		translator:              translator,
		perQueueStaffPermission: perQueueStaffPermission,
		logger:                  logger,
	}
}

func (c *TicketListController) helpdeskUser(ctx echo.Context) (services.HelpdeskUser, error) {
	user, err := utils.GetUserFromCtx(ctx.Request().Context())
	if err != nil {
		return services.HelpdeskUser{}, apperrors.NewHttpError(http.StatusUnauthorized, "Требуется вход", err, nil)
	}
	return services.NewHelpdeskUser(*user, c.perQueueStaffPermission), nil
}

// Tickets - страница списка тикетов.
func (c *TicketListController) Tickets(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	user, err := c.helpdeskUser(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	// Поиск из шапки: номер тикета сразу открывает тикет, иначе обычный поиск
	if ctx.QueryParam("search_type") == "header" {
		ticket, err := c.ticketListService.FindHeaderSearchTicket(reqCtx, user, ctx.QueryParam("q"))
		switch {
		case err == nil:
			return ctx.Redirect(http.StatusFound, ticket.StaffURL())
		case !errors.Is(err, apperrors.ErrNotFound):
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}

	lang := c.translator.Match(ctx.Request().Header.Get("Accept-Language"))
	page, err := c.ticketListService.BuildTicketListPage(reqCtx, user, ctx.QueryParams(), lang)
	if err != nil {
		if errors.Is(err, apperrors.ErrQueryLoad) {
			return ctx.Redirect(http.StatusFound, TicketListURL)
		}
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.Render(http.StatusOK, TicketListTemplate, page.TemplateContext())
}

func (c *TicketListController) queryToken(ctx echo.Context) (string, error) {
	param := dto.QueryTokenParamDTO{Query: ctx.Param(queryTokenParam)}
	if err := ctx.Validate(&param); err != nil {
		return "", apperrors.NewHttpError(http.StatusNotFound, "Страница не найдена", err, nil)
	}
	return param.Query, nil
}

// bindDatatablesRequest: колонку сортировки клиента не читаем, она всегда ForcedOrderColumn.
func bindDatatablesRequest(ctx echo.Context) (dto.DatatablesRequestDTO, error) {
	req := dto.NewDatatablesRequestDTO()
	err := echo.QueryParamsBinder(ctx).
		Int("draw", &req.Draw).
		Int("start", &req.Start).
		Int("length", &req.Length).
		String("search[value]", &req.SearchValue).
		String("order[0][dir]", &req.OrderDir).
		BindError()
	req.OrderColumn = dto.ForcedOrderColumn
	req.Normalize()
	return req, err
}

// DatatablesTicketList - JSON для DataTables по токену запроса.
func (c *TicketListController) DatatablesTicketList(ctx echo.Context) error {
	token, err := c.queryToken(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	user, err := c.helpdeskUser(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := bindDatatablesRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверные параметры DataTables", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, datatablesTimeoutSeconds)
	defer cancel()

	resp, err := c.ticketListService.Datatables(reqCtx, user, token, req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// ExportTickets отдаёт тикеты запроса файлом xlsx.
func (c *TicketListController) ExportTickets(ctx echo.Context) error {
	token, err := c.queryToken(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	user, err := c.helpdeskUser(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, exportTimeoutSeconds)
	defer cancel()

	rows, err := c.ticketListService.Export(reqCtx, user, token)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.respondWithXLSX(ctx, rows)
}

func (c *TicketListController) respondWithXLSX(ctx echo.Context, rows []dto.TicketExportRowDTO) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Warn("не удалось закрыть xlsx", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &dto.TicketExportHeaders); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastCol, _ := excelize.ColumnNumberToName(len(dto.TicketExportHeaders))
	_ = f.SetCellStyle(exportSheet, "A1", lastCol+"1", style)

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		cells := r.Cells()
		if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}
	_ = f.SetColWidth(exportSheet, "B", "B", 45)
	_ = f.SetColWidth(exportSheet, "C", "H", 20)

	fileName := fmt.Sprintf("tickets_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
