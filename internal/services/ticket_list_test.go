package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"soporte/internal/dto"
	"soporte/internal/entities"
	apperrors "soporte/pkg/errors"
	"soporte/pkg/helpdeskquery"
	"soporte/pkg/i18n"
	"soporte/pkg/metrics"
)

type TicketListServiceSuite struct {
	suite.Suite
	tickets *fakeTicketRepo
	cache   *memoryCache
	queues  *fakeQueueRepo
	saved   *fakeSavedSearchRepo
	fields  *fakeCustomFieldRepo
	svc     *TicketListService
	opts    TicketListOptions
}

func (s *TicketListServiceSuite) SetupTest() {
	s.tickets = &fakeTicketRepo{ids: []uint64{2, 1}}
	s.cache = newMemoryCache()
	s.queues = &fakeQueueRepo{queues: []entities.Queue{{ID: 3, Title: "Soporte", Slug: "soporte"}}}
	s.saved = &fakeSavedSearchRepo{searches: []entities.SavedSearch{
		{ID: 1, UserID: staff.ID, Title: "Mis abiertos", Query: "eyJzb3J0aW5nIjoidGl0bGUifQ=="},
		{ID: 2, UserID: 99, Title: "Compartido", Shared: true, Query: "b'eyJzb3J0aW5nIjoidGl0bGUifQ=='"},
		{ID: 3, UserID: 99, Title: "Privado ajeno", Query: "eyJzb3J0aW5nIjoidGl0bGUifQ=="},
		{ID: 4, UserID: staff.ID, Title: "Roto", Query: "bm8tanNvbg=="},
	}}
	s.fields = &fakeCustomFieldRepo{values: map[uint64]string{2: "3h"}}
	s.opts = TicketListOptions{ExportMaxRows: 500}
	s.build()
}

func (s *TicketListServiceSuite) build() {
	m := metrics.New()
	logger := zap.NewNop()
	query := NewTicketQueryService(s.tickets, s.cache, m, logger, time.Hour)
	s.svc = NewTicketListService(
		query, s.tickets, s.queues,
		&fakeUserRepo{staff: []entities.User{staff.User}},
		s.saved,
		&fakeKBItemRepo{items: []entities.KBItem{{ID: 5, Title: "Reiniciar router", CategoryTitle: "Redes"}}},
		s.fields, i18n.New("es"), m, logger, s.opts,
	).(*TicketListService)
	s.svc.now = func() time.Time { return time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC) }
}

func TestTicketListServiceSuite(t *testing.T) {
	suite.Run(t, new(TicketListServiceSuite))
}

func (s *TicketListServiceSuite) TestHeaderSearch_FindsBySlugAndID() {
	ticket := sampleTicket(42, 3)
	s.tickets.found = &ticket

	found, err := s.svc.FindHeaderSearchTicket(context.Background(), staff, "soporte-42")

	s.Require().NoError(err)
	s.Equal("/tickets/42/", found.StaffURL())
	sql, args, err := s.tickets.selections[0].Where[0].ToSql()
	s.Require().NoError(err)
	s.Contains(sql, "q.slug = ?")
	s.Contains(args, "soporte")
}

func (s *TicketListServiceSuite) TestHeaderSearch_NotATicketReference() {
	_, err := s.svc.FindHeaderSearchTicket(context.Background(), staff, "impresora")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Empty(s.tickets.selections)
}

func (s *TicketListServiceSuite) TestHeaderSearch_Missing() {
	_, err := s.svc.FindHeaderSearchTicket(context.Background(), staff, "77")

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TicketListServiceSuite) TestHeaderSearch_OutOfRangeIDIsNotAReference() {
	_, err := s.svc.FindHeaderSearchTicket(context.Background(), staff, "soporte-3000000000")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Empty(s.tickets.selections)
}

func (s *TicketListServiceSuite) TestBuildPage_OutOfRangeFilterDropped() {
	page, err := s.svc.BuildTicketListPage(context.Background(), staff, url.Values{"status": {"3000000000"}, "queue": {"3"}}, language.Spanish)

	s.Require().NoError(err)
	s.Nil(page.QueryParams.Filtering.StatusIn)
	s.Equal([]int{3}, page.QueryParams.Filtering.QueueIDIn)
}

func (s *TicketListServiceSuite) TestLoadSavedQuery() {
	saved, params, err := s.svc.LoadSavedQuery(context.Background(), staff, "2")
	s.Require().NoError(err)
	s.Equal("Compartido", saved.Title)
	s.Equal("title", params.Sorting)

	for _, raw := range []string{"abc", "3", "4", "404", "3000000000", "-2"} {
		_, _, err := s.svc.LoadSavedQuery(context.Background(), staff, raw)
		s.ErrorIs(err, apperrors.ErrQueryLoad, raw)
	}
	// до базы доходят только id из диапазона int4
	s.Equal([]uint64{2, 3, 4, 404}, s.saved.lookups)
}

func (s *TicketListServiceSuite) TestBuildPage_Defaults() {
	page, err := s.svc.BuildTicketListPage(context.Background(), staff, url.Values{}, language.Spanish)

	s.Require().NoError(err)
	s.Equal(helpdeskquery.Default(), page.QueryParams)
	s.Nil(page.Query)
	s.Nil(page.SavedQuery)
	s.Equal(25, page.DefaultTicketsPerPage)
	s.Len(page.UserSavedQueries, 3)
	s.Equal([]dto.IDLabelDTO{{ID: 5, Label: "Redes: Reiniciar router"}}, page.KBItemChoices)
	s.Empty(page.SearchMessage)

	decoded, err := helpdeskquery.Decode(page.UrlsafeQuery)
	s.Require().NoError(err)
	s.Equal(page.QueryParams, decoded)
	s.Contains(s.cache.data, cacheKey(staff, page.UrlsafeQuery))

	ctx := page.TemplateContext()
	s.NotContains(ctx, "query")
	s.Equal(false, ctx["from_saved_query"])
}

func (s *TicketListServiceSuite) TestBuildPage_FromRequest() {
	values := url.Values{"status": {"1", "x"}, "q": {"tóner"}, "sortreverse": {"1"}}

	page, err := s.svc.BuildTicketListPage(context.Background(), staff, values, language.Spanish)

	s.Require().NoError(err)
	s.Equal([]int{1}, page.QueryParams.Filtering.StatusIn)
	s.Equal("tóner", page.QueryParams.SearchString)
	s.Require().NotNil(page.Query)
	s.Equal("tóner", *page.Query)
	s.Equal("tóner", page.TemplateContext()["query"])
	s.Empty(page.SearchMessage)
}

func (s *TicketListServiceSuite) TestBuildPage_SavedQuery() {
	page, err := s.svc.BuildTicketListPage(context.Background(), staff, url.Values{"saved_query": {"1"}, "status": {"4"}}, language.Spanish)

	s.Require().NoError(err)
	s.Require().NotNil(page.SavedQuery)
	s.Equal(uint64(1), page.SavedQuery.ID)
	s.Equal("title", page.QueryParams.Sorting)
	s.Nil(page.QueryParams.Filtering.StatusIn)
	s.Equal(true, page.TemplateContext()["from_saved_query"])
}

func (s *TicketListServiceSuite) TestBuildPage_SavedQueryError() {
	_, err := s.svc.BuildTicketListPage(context.Background(), staff, url.Values{"saved_query": {"3"}}, language.Spanish)

	s.ErrorIs(err, apperrors.ErrQueryLoad)
}

func (s *TicketListServiceSuite) TestBuildPage_CaseSensitiveWarning() {
	s.opts.SearchIsCaseSensitive = true
	s.build()

	page, err := s.svc.BuildTicketListPage(context.Background(), staff, url.Values{"q": {"router"}}, language.English)
	s.Require().NoError(err)
	s.Contains(page.SearchMessage, "case sensitive")

	page, err = s.svc.BuildTicketListPage(context.Background(), staff, url.Values{}, language.English)
	s.Require().NoError(err)
	s.Empty(page.SearchMessage)
}

func (s *TicketListServiceSuite) TestBuildPage_RestrictedQueues() {
	restricted := NewHelpdeskUser(staff.User, true)

	_, err := s.svc.BuildTicketListPage(context.Background(), restricted, url.Values{}, language.Spanish)

	s.Require().NoError(err)
	s.NotNil(s.queues.access)

	superuser := staff.User
	superuser.IsSuperuser = true
	_, err = s.svc.BuildTicketListPage(context.Background(), NewHelpdeskUser(superuser, true), url.Values{}, language.Spanish)
	s.Require().NoError(err)
	s.Nil(s.queues.access)
}

func (s *TicketListServiceSuite) TestDatatables_ForcesPriorityColumnAndAddsEstimate() {
	s.tickets.tickets = []entities.Ticket{sampleTicket(2, 1), sampleTicket(1, 5)}
	token, err := helpdeskquery.Encode(helpdeskquery.Default())
	s.Require().NoError(err)
	req := dto.NewDatatablesRequestDTO()
	req.Draw = 3
	req.OrderColumn = "1"
	req.OrderDir = "desc"

	resp, err := s.svc.Datatables(context.Background(), staff, token, req)

	s.Require().NoError(err)
	s.Equal(3, resp.Draw)
	s.Equal(uint64(2), resp.RecordsTotal)
	s.Require().Len(resp.Data, 2)
	s.Equal("3h", resp.Data[0].EstimatedTime)
	s.Equal("", resp.Data[1].EstimatedTime)
	s.Equal("2 [soporte-2]", resp.Data[0].Ticket)
	s.Equal("danger", resp.Data[0].RowClass)
	s.Equal("success", resp.Data[1].RowClass)

	last := s.tickets.selections[len(s.tickets.selections)-1]
	s.Equal([]string{"t.priority DESC", "t.id DESC"}, last.OrderBy)
}

func (s *TicketListServiceSuite) TestExport() {
	unassigned := sampleTicket(1, 2)
	unassigned.AssignedToName = null.String{}
	s.tickets.tickets = []entities.Ticket{sampleTicket(2, 1), unassigned}
	token, err := helpdeskquery.Encode(helpdeskquery.Default())
	s.Require().NoError(err)

	rows, err := s.svc.Export(context.Background(), staff, token)

	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("Open", rows[0].Status)
	s.Equal("1. Critical", rows[0].Priority)
	s.Equal("3h", rows[0].EstimatedTime)
	s.Equal("None", rows[1].AssignedTo)

	last := s.tickets.selections[len(s.tickets.selections)-1]
	s.Equal(uint64(500), last.Limit)
}
