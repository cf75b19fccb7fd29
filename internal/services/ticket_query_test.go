package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"soporte/internal/dto"
	"soporte/internal/entities"
	"soporte/pkg/helpdeskquery"
	"soporte/pkg/metrics"
)

func newQueryService(repo *fakeTicketRepo, cache *memoryCache) *TicketQueryService {
	return NewTicketQueryService(repo, cache, metrics.New(), zap.NewNop(), time.Hour).(*TicketQueryService)
}

func defaultToken(t *testing.T) string {
	token, err := helpdeskquery.Encode(helpdeskquery.Default())
	require.NoError(t, err)
	return token
}

var staff = HelpdeskUser{User: entities.User{ID: 7, Email: "ana@example.com", IsActive: true, IsStaff: true, TicketsPerPage: 25}}

func TestTicketQuery_RefreshCachesIDs(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{5, 3, 9}}
	cache := newMemoryCache()
	svc := newQueryService(repo, cache)
	token := defaultToken(t)

	ids, err := svc.Refresh(context.Background(), staff, token)

	require.NoError(t, err)
	assert.Equal(t, []uint64{5, 3, 9}, ids)
	assert.Equal(t, "[5,3,9]", cache.data[cacheKey(staff, token)])
	assert.Equal(t, time.Hour, cache.ttl[cacheKey(staff, token)])

	require.Len(t, repo.selections, 1)
	assert.Equal(t, []string{"t.priority ASC", "t.id ASC"}, repo.selections[0].OrderBy)
	assert.Nil(t, repo.selections[0].IDs)
}

func TestTicketQuery_RefreshRestrictsQueues(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{1}}
	svc := newQueryService(repo, newMemoryCache())
	restricted := NewHelpdeskUser(staff.User, true)

	_, err := svc.Refresh(context.Background(), restricted, defaultToken(t))

	require.NoError(t, err)
	where := repo.selections[0].Where
	require.Len(t, where, 2)
	sql, _, err := where[1].ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "queue_access_")
}

func TestTicketQuery_RefreshRejectsMalformedToken(t *testing.T) {
	svc := newQueryService(&fakeTicketRepo{}, newMemoryCache())

	_, err := svc.Refresh(context.Background(), staff, "%%%")

	assert.ErrorIs(t, err, helpdeskquery.ErrMalformedToken)
}

func TestTicketQuery_GetUsesCache(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{1, 2}}
	cache := newMemoryCache()
	svc := newQueryService(repo, cache)
	token := defaultToken(t)
	cache.data[cacheKey(staff, token)] = "[4,8]"

	ids, err := svc.Get(context.Background(), staff, token)

	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 8}, ids)
	assert.Equal(t, 0, repo.idCalls)
}

func TestTicketQuery_GetRefreshesEmptyOrMissing(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{1, 2}}
	cache := newMemoryCache()
	svc := newQueryService(repo, cache)
	token := defaultToken(t)

	ids, err := svc.Get(context.Background(), staff, token)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)

	cache.data[cacheKey(staff, token)] = "[]"
	_, err = svc.Get(context.Background(), staff, token)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.idCalls)
}

func TestTicketQuery_CacheFailuresAreNotFatal(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{6}}
	cache := newMemoryCache()
	cache.failGet = errors.New("redis caído")
	cache.failSet = errors.New("redis caído")
	svc := newQueryService(repo, cache)

	ids, err := svc.Get(context.Background(), staff, defaultToken(t))

	require.NoError(t, err)
	assert.Equal(t, []uint64{6}, ids)
}

func TestTicketQuery_CacheIsPerUser(t *testing.T) {
	other := HelpdeskUser{User: entities.User{ID: 8}}
	token := defaultToken(t)

	assert.NotEqual(t, cacheKey(staff, token), cacheKey(other, token))
}

func TestTicketQuery_DatatablesContext(t *testing.T) {
	repo := &fakeTicketRepo{
		ids:     []uint64{1, 2, 3},
		count:   2,
		tickets: []entities.Ticket{sampleTicket(2, 1), sampleTicket(3, 2)},
	}
	svc := newQueryService(repo, newMemoryCache())
	req := dto.NewDatatablesRequestDTO()
	req.Draw = 4
	req.Start = 0
	req.Length = 10
	req.SearchValue = "impresora"
	req.OrderColumn = "2"
	req.OrderDir = "desc"

	page, err := svc.DatatablesContext(context.Background(), staff, defaultToken(t), req)

	require.NoError(t, err)
	assert.Equal(t, uint64(3), page.RecordsTotal)
	assert.Equal(t, uint64(2), page.RecordsFiltered)
	assert.Equal(t, 4, page.Draw)
	assert.Len(t, page.Tickets, 2)

	last := repo.selections[len(repo.selections)-1]
	assert.Equal(t, []uint64{1, 2, 3}, last.IDs)
	assert.Equal(t, []string{"t.priority DESC", "t.id DESC"}, last.OrderBy)
	assert.Equal(t, uint64(10), last.Limit)
	require.Len(t, last.Where, 1)
}

func TestTicketQuery_DatatablesContextWithoutSearch(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{1, 2}, count: 99, tickets: []entities.Ticket{sampleTicket(1, 3)}}
	svc := newQueryService(repo, newMemoryCache())

	page, err := svc.DatatablesContext(context.Background(), staff, defaultToken(t), dto.NewDatatablesRequestDTO())

	require.NoError(t, err)
	assert.Equal(t, uint64(2), page.RecordsTotal)
	assert.Equal(t, uint64(2), page.RecordsFiltered)
	assert.Empty(t, repo.selections[len(repo.selections)-1].Where)
}

func TestTicketQuery_DatatablesContextZeroLength(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{1, 2}, tickets: []entities.Ticket{sampleTicket(1, 3)}}
	svc := newQueryService(repo, newMemoryCache())
	req := dto.NewDatatablesRequestDTO()
	req.Length = 0

	page, err := svc.DatatablesContext(context.Background(), staff, defaultToken(t), req)

	require.NoError(t, err)
	assert.Equal(t, uint64(2), page.RecordsTotal)
	assert.Equal(t, uint64(2), page.RecordsFiltered)
	assert.Empty(t, page.Tickets)
	// только пересчёт id, страница не запрашивалась
	assert.Len(t, repo.selections, 1)
}

func TestTicketQuery_DatatablesContextEmptyQuery(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{}}
	svc := newQueryService(repo, newMemoryCache())

	page, err := svc.DatatablesContext(context.Background(), staff, defaultToken(t), dto.NewDatatablesRequestDTO())

	require.NoError(t, err)
	assert.Zero(t, page.RecordsTotal)
	assert.NotNil(t, page.Tickets)
	assert.Empty(t, page.Tickets)
}

func TestTicketQuery_TicketsKeepsQueryOrder(t *testing.T) {
	repo := &fakeTicketRepo{ids: []uint64{1}, tickets: []entities.Ticket{sampleTicket(1, 3)}}
	svc := newQueryService(repo, newMemoryCache())
	params := helpdeskquery.Empty()
	params.Sorting = "title"
	params.SortReverse = "on"
	token, err := helpdeskquery.Encode(params)
	require.NoError(t, err)

	tickets, err := svc.Tickets(context.Background(), staff, token, 100)

	require.NoError(t, err)
	assert.Len(t, tickets, 1)
	last := repo.selections[len(repo.selections)-1]
	assert.Equal(t, []string{"t.title DESC", "t.id DESC"}, last.OrderBy)
	assert.Equal(t, uint64(100), last.Limit)
}
