package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"soporte/internal/dto"
	"soporte/internal/entities"
	"soporte/internal/services"
	apperrors "soporte/pkg/errors"
	"soporte/pkg/helpdeskquery"
	"soporte/pkg/i18n"
	"soporte/pkg/utils"
	"soporte/pkg/validation"
)

type fakeTicketListService struct {
	headerTicket *entities.Ticket
	pageErr      error
	page         *dto.TicketListPageDTO
	datatables   *dto.DatatablesResponseDTO
	exportRows   []dto.TicketExportRowDTO

	gotValues url.Values
	gotLang   language.Tag
	gotReq    dto.DatatablesRequestDTO
	gotToken  string
}

func (f *fakeTicketListService) FindHeaderSearchTicket(_ context.Context, _ services.HelpdeskUser, _ string) (*entities.Ticket, error) {
	if f.headerTicket == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.headerTicket, nil
}

func (f *fakeTicketListService) LoadSavedQuery(context.Context, services.HelpdeskUser, string) (*entities.SavedSearch, helpdeskquery.QueryParams, error) {
	return nil, helpdeskquery.QueryParams{}, nil
}

func (f *fakeTicketListService) BuildTicketListPage(_ context.Context, _ services.HelpdeskUser, values url.Values, lang language.Tag) (*dto.TicketListPageDTO, error) {
	f.gotValues = values
	f.gotLang = lang
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.page, nil
}

func (f *fakeTicketListService) Datatables(_ context.Context, _ services.HelpdeskUser, token string, req dto.DatatablesRequestDTO) (*dto.DatatablesResponseDTO, error) {
	f.gotToken = token
	f.gotReq = req
	return f.datatables, nil
}

func (f *fakeTicketListService) Export(_ context.Context, _ services.HelpdeskUser, token string) ([]dto.TicketExportRowDTO, error) {
	f.gotToken = token
	return f.exportRows, nil
}

type recordingRenderer struct {
	name string
	data interface{}
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.data = data
	_, err := io.WriteString(w, "ok")
	return err
}

type controllerEnv struct {
	echo     *echo.Echo
	service  *fakeTicketListService
	renderer *recordingRenderer
}

func newControllerEnv(t *testing.T) *controllerEnv {
	t.Helper()
	env := &controllerEnv{
		echo:     echo.New(),
		service:  &fakeTicketListService{page: &dto.TicketListPageDTO{UrlsafeQuery: "e30="}},
		renderer: &recordingRenderer{},
	}
	env.echo.Validator = validation.New()
	env.echo.Renderer = env.renderer

	ctrl := NewTicketListController(env.service, i18n.New("es"), false, zap.NewNop())
	withUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := &entities.User{ID: 7, IsActive: true, IsStaff: true}
			c.SetRequest(c.Request().WithContext(utils.WithUser(c.Request().Context(), user)))
			return next(c)
		}
	}
	env.echo.GET(TicketListURL, ctrl.Tickets, withUser)
	env.echo.GET(DatatablesURL, ctrl.DatatablesTicketList, withUser)
	env.echo.GET(ExportURL, ctrl.ExportTickets, withUser)
	return env
}

func (env *controllerEnv) get(target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func TestTickets_HeaderSearchRedirectsToTicket(t *testing.T) {
	env := newControllerEnv(t)
	env.service.headerTicket = &entities.Ticket{ID: 42, QueueSlug: "soporte"}

	rec := env.get("/tickets/?search_type=header&q=soporte-42", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/tickets/42/", rec.Header().Get(echo.HeaderLocation))
}

func TestTickets_HeaderSearchFallsThroughToList(t *testing.T) {
	env := newControllerEnv(t)

	rec := env.get("/tickets/?search_type=header&q=impresora", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TicketListTemplate, env.renderer.name)
	assert.Equal(t, "impresora", env.service.gotValues.Get("q"))
}

func TestTickets_SavedQueryErrorRedirects(t *testing.T) {
	env := newControllerEnv(t)
	env.service.pageErr = apperrors.ErrQueryLoad

	rec := env.get("/tickets/?saved_query=99", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, TicketListURL, rec.Header().Get(echo.HeaderLocation))
}

func TestTickets_RendersPageContext(t *testing.T) {
	env := newControllerEnv(t)

	rec := env.get("/tickets/?status=1", map[string]string{"Accept-Language": "en-US,en;q=0.8"})

	require.Equal(t, http.StatusOK, rec.Code)
	ctx, ok := env.renderer.data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "e30=", ctx["urlsafe_query"])
	assert.Equal(t, language.English, env.service.gotLang)
}

func TestDatatables_RejectsBadToken(t *testing.T) {
	env := newControllerEnv(t)

	rec := env.get("/datatables_ticket_list/abc", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatatables_BindsRequestAndReturnsJSON(t *testing.T) {
	env := newControllerEnv(t)
	env.service.datatables = &dto.DatatablesResponseDTO{
		Data:            []dto.DatatablesTicketRowDTO{{ID: 1, Ticket: "1 [soporte-1]", EstimatedTime: "2h"}},
		RecordsFiltered: 1,
		RecordsTotal:    3,
		Draw:            5,
	}

	query := url.Values{
		"draw":             {"5"},
		"start":            {"10"},
		"length":           {"-1"},
		"search[value]":    {"vpn"},
		"order[0][column]": {"7"},
		"order[0][dir]":    {"desc"},
	}
	rec := env.get("/datatables_ticket_list/e30=?"+query.Encode(), nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "e30=", env.service.gotToken)
	assert.Equal(t, 5, env.service.gotReq.Draw)
	assert.Equal(t, 10, env.service.gotReq.Start)
	assert.Equal(t, dto.MaxDatatablesLength, env.service.gotReq.Length)
	assert.Equal(t, "vpn", env.service.gotReq.SearchValue)
	assert.Equal(t, dto.ForcedOrderColumn, env.service.gotReq.OrderColumn)
	assert.Equal(t, "desc", env.service.gotReq.OrderDir)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(5), body["draw"])
	assert.Equal(t, float64(3), body["recordsTotal"])
	assert.Equal(t, float64(1), body["recordsFiltered"])
	rows := body["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "2h", rows[0].(map[string]interface{})["tiempoestimado"])
}

func TestDatatables_IgnoresClientOrderColumn(t *testing.T) {
	env := newControllerEnv(t)
	env.service.datatables = &dto.DatatablesResponseDTO{Data: []dto.DatatablesTicketRowDTO{}}

	rec := env.get("/datatables_ticket_list/e30=?order[0][column]=abc&order[0][dir]=desc", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, dto.ForcedOrderColumn, env.service.gotReq.OrderColumn)
	assert.Equal(t, "desc", env.service.gotReq.OrderDir)
}

func TestDatatables_ZeroLength(t *testing.T) {
	env := newControllerEnv(t)
	env.service.datatables = &dto.DatatablesResponseDTO{Data: []dto.DatatablesTicketRowDTO{}, RecordsTotal: 4, RecordsFiltered: 4}

	rec := env.get("/datatables_ticket_list/e30=?length=0", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Zero(t, env.service.gotReq.Length)
}

func TestDatatables_StandardAlphabetTokenWithSlash(t *testing.T) {
	env := newControllerEnv(t)
	env.service.datatables = &dto.DatatablesResponseDTO{Data: []dto.DatatablesTicketRowDTO{}}

	rec := env.get("/datatables_ticket_list/ab/c", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ab/c", env.service.gotToken)
}

func TestDatatables_EmptyToken(t *testing.T) {
	env := newControllerEnv(t)

	rec := env.get("/datatables_ticket_list/", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatatables_InvalidParams(t *testing.T) {
	env := newControllerEnv(t)

	rec := env.get("/datatables_ticket_list/e30=?draw=uno", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.get("/datatables_ticket_list/e30=?order[0][dir]=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportTickets_WritesWorkbook(t *testing.T) {
	env := newControllerEnv(t)
	env.service.exportRows = []dto.TicketExportRowDTO{
		{ID: 1, Title: "Impresora", Created: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
	}

	rec := env.get("/tickets/export/e30=", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tickets_")
	// xlsx - это zip
	assert.Equal(t, "PK", rec.Body.String()[:2])
}
