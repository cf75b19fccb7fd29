package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"soporte/internal/entities"
	apperrors "soporte/pkg/errors"
)

const ticketTable = "helpdesk_ticket"

// TicketSelection - выборка тикетов. IDs == nil значит "без ограничения по id",
// пустой не-nil срез не находит ничего.
type TicketSelection struct {
	IDs     []uint64
	Where   []sq.Sqlizer
	OrderBy []string
	Limit   uint64
	Offset  uint64
}

type TicketRepositoryInterface interface {
	FindTicketIDs(ctx context.Context, sel TicketSelection) ([]uint64, error)
	CountTickets(ctx context.Context, sel TicketSelection) (uint64, error)
	GetTickets(ctx context.Context, sel TicketSelection) ([]entities.Ticket, error)
	FindTicket(ctx context.Context, sel TicketSelection) (*entities.Ticket, error)
}

type TicketRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTicketRepository(storage *pgxpool.Pool, logger *zap.Logger) TicketRepositoryInterface {
	return &TicketRepository{storage: storage, logger: logger}
}

var ticketColumns = []string{
	"t.id", "t.title", "t.queue_id", "q.title", "q.slug", "t.status", "t.priority",
	"t.created", "t.due_date", "t.assigned_to_id",
	"COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), NULLIF(u.email, ''), u.username)",
	"t.submitter_email", "t.kbitem_id",
	"kb.title",
	"ts.seconds",
}

// ticketFrom - тикет со всеми связями, по которым идёт поиск и сортировка.
func ticketFrom(b sq.SelectBuilder, sel TicketSelection) sq.SelectBuilder {
	b = b.From(ticketTable + " AS t").
		Join("helpdesk_queue q ON q.id = t.queue_id").
		LeftJoin("auth_user u ON u.id = t.assigned_to_id").
		LeftJoin("helpdesk_kbitem kb ON kb.id = t.kbitem_id").
		LeftJoin(`LATERAL (
			SELECT COALESCE(SUM(EXTRACT(EPOCH FROM f.time_spent)), 0)::bigint AS seconds
			FROM helpdesk_followup f WHERE f.ticket_id = t.id
		) ts ON true`)

	if sel.IDs != nil {
		b = b.Where(sq.Eq{"t.id": sel.IDs})
	}
	for _, cond := range sel.Where {
		if cond != nil {
			b = b.Where(cond)
		}
	}
	return b
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var t entities.Ticket
	err := row.Scan(
		&t.ID, &t.Title, &t.QueueID, &t.QueueTitle, &t.QueueSlug, &t.Status, &t.Priority,
		&t.Created, &t.DueDate, &t.AssignedToID, &t.AssignedToName,
		&t.SubmitterEmail, &t.KBItemID, &t.KBItemTitle, &t.TimeSpentSeconds,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования ticket: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) FindTicketIDs(ctx context.Context, sel TicketSelection) ([]uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	b := ticketFrom(psql.Select("t.id"), sel).OrderBy(sel.OrderBy...)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("ошибка выборки id тикетов", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *TicketRepository) CountTickets(ctx context.Context, sel TicketSelection) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := ticketFrom(psql.Select("COUNT(t.id)"), sel).ToSql()
	if err != nil {
		return 0, err
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		r.logger.Error("ошибка подсчёта тикетов", zap.Error(err))
		return 0, err
	}
	return total, nil
}

func (r *TicketRepository) GetTickets(ctx context.Context, sel TicketSelection) ([]entities.Ticket, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	b := ticketFrom(psql.Select(ticketColumns...), sel).OrderBy(sel.OrderBy...)
	if sel.Limit > 0 {
		b = b.Limit(sel.Limit)
	}
	if sel.Offset > 0 {
		b = b.Offset(sel.Offset)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("ошибка выборки тикетов", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tickets := make([]entities.Ticket, 0, sel.Limit)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// FindTicket - первый тикет выборки или apperrors.ErrNotFound.
func (r *TicketRepository) FindTicket(ctx context.Context, sel TicketSelection) (*entities.Ticket, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := ticketFrom(psql.Select(ticketColumns...), sel).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTicket(r.storage.QueryRow(ctx, query, args...))
}
