package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"soporte/internal/dto"
	"soporte/internal/entities"
	"soporte/internal/infrastructure/bd"
	"soporte/internal/repositories"
	"soporte/pkg/helpdeskquery"
	"soporte/pkg/metrics"
)

const queryCacheKeyPrefix = "helpdesk_query"

// DatatablesPage - страница DataTables до сериализации строк.
type DatatablesPage struct {
	Tickets         []entities.Ticket
	RecordsTotal    uint64
	RecordsFiltered uint64
	Draw            int
}

type TicketQueryServiceInterface interface {
	// Refresh пересчитывает id тикетов запроса и кладёт их в кеш.
	Refresh(ctx context.Context, user HelpdeskUser, token string) ([]uint64, error)
	// Get - id из кеша; пустой или отсутствующий кеш пересчитывается.
	Get(ctx context.Context, user HelpdeskUser, token string) ([]uint64, error)
	DatatablesContext(ctx context.Context, user HelpdeskUser, token string, req dto.DatatablesRequestDTO) (*DatatablesPage, error)
	// Tickets - тикеты запроса в его собственном порядке, не больше limit.
	Tickets(ctx context.Context, user HelpdeskUser, token string, limit uint64) ([]entities.Ticket, error)
}

type TicketQueryService struct {
	ticketRepo repositories.TicketRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	metrics    *metrics.Metrics
	logger     *zap.Logger
	cacheTTL   time.Duration
}

func NewTicketQueryService(
	ticketRepo repositories.TicketRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	metrics *metrics.Metrics,
	logger *zap.Logger,
	cacheTTL time.Duration,
) TicketQueryServiceInterface {
	return &TicketQueryService{
		ticketRepo: ticketRepo,
		cacheRepo:  cacheRepo,
		metrics:    metrics,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// cacheKey привязан к пользователю: у разных сотрудников разный доступ к очередям.
func cacheKey(user HelpdeskUser, token string) string {
	return fmt.Sprintf("%s:%d:%s", queryCacheKeyPrefix, user.ID, token)
}

func (s *TicketQueryService) Refresh(ctx context.Context, user HelpdeskUser, token string) ([]uint64, error) {
	params, err := helpdeskquery.Decode(token)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(s.metrics.RefreshDuration)
	ids, err := s.ticketRepo.FindTicketIDs(ctx, repositories.TicketSelection{
		Where:   []sq.Sqlizer{bd.TicketCondition(params), user.QueueAccess("t.queue_id")},
		OrderBy: bd.TicketOrderBy(params.Sorting, params.SortReverse.Enabled()),
	})
	timer.ObserveDuration()
	if err != nil {
		s.logger.Error("TicketQueryService: не удалось выполнить запрос", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, err
	}
	s.metrics.QueryRefreshes.Inc()

	payload, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	if err := s.cacheRepo.Set(ctx, cacheKey(user, token), string(payload), s.cacheTTL); err != nil {
		s.metrics.QueryCacheErrors.Inc()
		s.logger.Warn("TicketQueryService: не удалось сохранить запрос в кеш", zap.Uint64("userID", user.ID), zap.Error(err))
	}

	s.logger.Debug("TicketQueryService: запрос пересчитан", zap.Uint64("userID", user.ID), zap.Int("tickets", len(ids)))
	return ids, nil
}

func (s *TicketQueryService) Get(ctx context.Context, user HelpdeskUser, token string) ([]uint64, error) {
	cached, err := s.cacheRepo.Get(ctx, cacheKey(user, token))
	switch {
	case err == nil:
		var ids []uint64
		if errJSON := json.Unmarshal([]byte(cached), &ids); errJSON == nil && len(ids) > 0 {
			s.metrics.QueryCacheHits.Inc()
			return ids, nil
		}
	case errors.Is(err, redis.Nil):
	default:
		s.metrics.QueryCacheErrors.Inc()
		s.logger.Warn("TicketQueryService: ошибка чтения кеша запроса", zap.Error(err))
	}

	s.metrics.QueryCacheMisses.Inc()
	return s.Refresh(ctx, user, token)
}

func (s *TicketQueryService) DatatablesContext(ctx context.Context, user HelpdeskUser, token string, req dto.DatatablesRequestDTO) (*DatatablesPage, error) {
	ids, err := s.Get(ctx, user, token)
	if err != nil {
		return nil, err
	}

	page := &DatatablesPage{
		Tickets:      []entities.Ticket{},
		RecordsTotal: uint64(len(ids)),
		Draw:         req.Draw,
	}
	page.RecordsFiltered = page.RecordsTotal
	if len(ids) == 0 {
		return page, nil
	}

	sel := repositories.TicketSelection{
		IDs:     ids,
		OrderBy: bd.DatatablesOrderBy(req.OrderColumn, req.OrderDir),
		Limit:   uint64(req.Length),
		Offset:  uint64(req.Start),
	}
	if search := bd.SearchCondition(req.SearchValue); search != nil {
		sel.Where = []sq.Sqlizer{search}
		if page.RecordsFiltered, err = s.ticketRepo.CountTickets(ctx, sel); err != nil {
			return nil, err
		}
		if page.RecordsFiltered == 0 {
			return page, nil
		}
	}
	if req.Length == 0 {
		return page, nil
	}

	if page.Tickets, err = s.ticketRepo.GetTickets(ctx, sel); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *TicketQueryService) Tickets(ctx context.Context, user HelpdeskUser, token string, limit uint64) ([]entities.Ticket, error) {
	params, err := helpdeskquery.Decode(token)
	if err != nil {
		return nil, err
	}
	ids, err := s.Get(ctx, user, token)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []entities.Ticket{}, nil
	}

	return s.ticketRepo.GetTickets(ctx, repositories.TicketSelection{
		IDs:     ids,
		OrderBy: bd.TicketOrderBy(params.Sorting, params.SortReverse.Enabled()),
		Limit:   limit,
	})
}
