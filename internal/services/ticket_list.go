package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"soporte/internal/dto"
	"soporte/internal/entities"
	"soporte/internal/repositories"
	"soporte/pkg/constants"
	apperrors "soporte/pkg/errors"
	"soporte/pkg/helpdeskquery"
	"soporte/pkg/i18n"
	"soporte/pkg/metrics"
)

type TicketListOptions struct {
	// SearchIsCaseSensitive включает предупреждение о регистрозависимом поиске.
	SearchIsCaseSensitive bool
	ExportMaxRows         int
}

type TicketListServiceInterface interface {
	// FindHeaderSearchTicket ищет тикет по "<slug>-<id>" или "<id>" среди доступных
	// пользователю очередей; apperrors.ErrNotFound, если такого нет.
	FindHeaderSearchTicket(ctx context.Context, user HelpdeskUser, query string) (*entities.Ticket, error)
	// LoadSavedQuery - apperrors.ErrQueryLoad, если запрос не найден, чужой или не раскодировался.
	LoadSavedQuery(ctx context.Context, user HelpdeskUser, rawID string) (*entities.SavedSearch, helpdeskquery.QueryParams, error)
	BuildTicketListPage(ctx context.Context, user HelpdeskUser, values url.Values, lang language.Tag) (*dto.TicketListPageDTO, error)
	Datatables(ctx context.Context, user HelpdeskUser, token string, req dto.DatatablesRequestDTO) (*dto.DatatablesResponseDTO, error)
	Export(ctx context.Context, user HelpdeskUser, token string) ([]dto.TicketExportRowDTO, error)
}

type TicketListService struct {
	queryService    TicketQueryServiceInterface
	ticketRepo      repositories.TicketRepositoryInterface
	queueRepo       repositories.QueueRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	savedSearchRepo repositories.SavedSearchRepositoryInterface
	kbItemRepo      repositories.KBItemRepositoryInterface
	customFieldRepo repositories.CustomFieldValueRepositoryInterface
	translator      *i18n.Translator
	metrics         *metrics.Metrics
	logger          *zap.Logger
	opts            TicketListOptions
	now             func() time.Time
}

func NewTicketListService(
	queryService TicketQueryServiceInterface,
	ticketRepo repositories.TicketRepositoryInterface,
	queueRepo repositories.QueueRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	savedSearchRepo repositories.SavedSearchRepositoryInterface,
	kbItemRepo repositories.KBItemRepositoryInterface,
	customFieldRepo repositories.CustomFieldValueRepositoryInterface,
	translator *i18n.Translator,
	metrics *metrics.Metrics,
	logger *zap.Logger,
	opts TicketListOptions,
) TicketListServiceInterface {
	return &TicketListService{
		queryService:    queryService,
		ticketRepo:      ticketRepo,
		queueRepo:       queueRepo,
		userRepo:        userRepo,
		savedSearchRepo: savedSearchRepo,
		kbItemRepo:      kbItemRepo,
		customFieldRepo: customFieldRepo,
		translator:      translator,
		metrics:         metrics,
		logger:          logger,
		opts:            opts,
		now:             time.Now,
	}
}

func (s *TicketListService) FindHeaderSearchTicket(ctx context.Context, user HelpdeskUser, query string) (*entities.Ticket, error) {
	lookup, ok := helpdeskquery.ParseHeaderSearch(query)
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	where := sq.Eq{"t.id": lookup.TicketID}
	if lookup.QueueSlug != "" {
		where["q.slug"] = lookup.QueueSlug
	}

	ticket, err := s.ticketRepo.FindTicket(ctx, repositories.TicketSelection{
		Where: []sq.Sqlizer{where, user.QueueAccess("t.queue_id")},
	})
	if err != nil {
		return nil, err
	}
	s.metrics.HeaderRedirects.Inc()
	return ticket, nil
}

func (s *TicketListService) LoadSavedQuery(ctx context.Context, user HelpdeskUser, rawID string) (*entities.SavedSearch, helpdeskquery.QueryParams, error) {
	id, ok := helpdeskquery.ParseID(rawID)
	if !ok {
		return nil, helpdeskquery.QueryParams{}, apperrors.ErrQueryLoad
	}

	saved, err := s.savedSearchRepo.FindVisible(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Info("TicketListService: сохранённый запрос недоступен", zap.Uint64("id", id), zap.Uint64("userID", user.ID))
			return nil, helpdeskquery.QueryParams{}, apperrors.ErrQueryLoad
		}
		return nil, helpdeskquery.QueryParams{}, err
	}

	params, err := helpdeskquery.DecodeStored(saved.Query)
	if err != nil {
		s.logger.Warn("TicketListService: сохранённый запрос повреждён", zap.Uint64("id", id), zap.Error(err))
		return nil, helpdeskquery.QueryParams{}, apperrors.ErrQueryLoad
	}
	return saved, params, nil
}

func (s *TicketListService) BuildTicketListPage(ctx context.Context, user HelpdeskUser, values url.Values, lang language.Tag) (*dto.TicketListPageDTO, error) {
	page := &dto.TicketListPageDTO{
		StatusChoices:         constants.StatusChoices,
		DefaultTicketsPerPage: user.TicketsPerPage,
	}

	switch {
	case values.Get("saved_query") != "":
		saved, params, err := s.LoadSavedQuery(ctx, user, values.Get("saved_query"))
		if err != nil {
			return nil, err
		}
		page.SavedQuery = saved
		page.QueryParams = params
	case !helpdeskquery.HasRecognizedParams(values):
		page.QueryParams = helpdeskquery.Default()
	default:
		page.QueryParams = helpdeskquery.ParseValues(values)
		q := values.Get("q")
		page.Query = &q
	}

	token, err := helpdeskquery.Encode(page.QueryParams)
	if err != nil {
		return nil, err
	}
	page.UrlsafeQuery = token

	if _, err := s.queryService.Refresh(ctx, user, token); err != nil {
		return nil, err
	}

	if page.UserSavedQueries, err = s.savedSearchRepo.GetVisible(ctx, user.ID); err != nil {
		return nil, err
	}
	if page.UserChoices, err = s.userRepo.GetActiveStaff(ctx); err != nil {
		return nil, err
	}
	if page.QueueChoices, err = s.queueRepo.GetQueues(ctx, user.QueueAccess("q.id")); err != nil {
		return nil, err
	}
	if page.KBItems, err = s.kbItemRepo.GetKBItems(ctx); err != nil {
		return nil, err
	}
	page.KBItemChoices = make([]dto.IDLabelDTO, 0, len(page.KBItems))
	for _, item := range page.KBItems {
		page.KBItemChoices = append(page.KBItemChoices, dto.IDLabelDTO{ID: item.ID, Label: item.String()})
	}

	if page.QueryParams.SearchString != "" && s.opts.SearchIsCaseSensitive {
		page.SearchMessage = s.translator.Sprintf(lang, i18n.KeyCaseSensitiveSearch)
	}

	return page, nil
}

// Datatables всегда сортирует по колонке ForcedOrderColumn, направление берётся из запроса.
func (s *TicketListService) Datatables(ctx context.Context, user HelpdeskUser, token string, req dto.DatatablesRequestDTO) (*dto.DatatablesResponseDTO, error) {
	req.OrderColumn = dto.ForcedOrderColumn

	page, err := s.queryService.DatatablesContext(ctx, user, token, req)
	if err != nil {
		return nil, err
	}
	estimated, err := s.estimatedTimes(ctx, page.Tickets)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &dto.DatatablesResponseDTO{
		Data:            make([]dto.DatatablesTicketRowDTO, 0, len(page.Tickets)),
		RecordsFiltered: page.RecordsFiltered,
		RecordsTotal:    page.RecordsTotal,
		Draw:            page.Draw,
	}
	for _, t := range page.Tickets {
		row := dto.NewDatatablesTicketRow(t, now)
		row.EstimatedTime = estimated[t.ID]
		resp.Data = append(resp.Data, row)
	}
	s.metrics.DatatablesServed.Inc()
	return resp, nil
}

func (s *TicketListService) Export(ctx context.Context, user HelpdeskUser, token string) ([]dto.TicketExportRowDTO, error) {
	limit := uint64(0)
	if s.opts.ExportMaxRows > 0 {
		limit = uint64(s.opts.ExportMaxRows)
	}

	tickets, err := s.queryService.Tickets(ctx, user, token, limit)
	if err != nil {
		return nil, err
	}
	estimated, err := s.estimatedTimes(ctx, tickets)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.TicketExportRowDTO, 0, len(tickets))
	for _, t := range tickets {
		assigned := "None"
		if t.AssignedToName.Valid && t.AssignedToName.String != "" {
			assigned = t.AssignedToName.String
		}
		rows = append(rows, dto.TicketExportRowDTO{
			ID:            t.ID,
			Title:         t.Title,
			Queue:         t.QueueTitle,
			Status:        constants.StatusLabel(t.Status),
			Priority:      constants.PriorityLabel(t.Priority),
			Created:       t.Created,
			AssignedTo:    assigned,
			Submitter:     t.SubmitterEmail.String,
			EstimatedTime: estimated[t.ID],
		})
	}
	s.metrics.Exports.Inc()
	return rows, nil
}

// estimatedTimes - первое кастомное поле тикета, для тикетов без полей "".
func (s *TicketListService) estimatedTimes(ctx context.Context, tickets []entities.Ticket) (map[uint64]string, error) {
	ids := make([]uint64, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	return s.customFieldRepo.GetFirstValues(ctx, ids)
}
