package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CustomFieldValueRepositoryInterface interface {
	// GetFirstValues - значение первого (по id) кастомного поля каждого тикета.
	// Тикетов без значений в результате нет.
	GetFirstValues(ctx context.Context, ticketIDs []uint64) (map[uint64]string, error)
}

type CustomFieldValueRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCustomFieldValueRepository(storage *pgxpool.Pool, logger *zap.Logger) CustomFieldValueRepositoryInterface {
	return &CustomFieldValueRepository{storage: storage, logger: logger}
}

func (r *CustomFieldValueRepository) GetFirstValues(ctx context.Context, ticketIDs []uint64) (map[uint64]string, error) {
	values := make(map[uint64]string, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return values, nil
	}

	query := `
		SELECT DISTINCT ON (ticket_id) ticket_id, COALESCE(value, '')
		FROM helpdesk_ticketcustomfieldvalue
		WHERE ticket_id = ANY($1)
		ORDER BY ticket_id, id`

	rows, err := r.storage.Query(ctx, query, ticketIDs)
	if err != nil {
		r.logger.Error("ошибка выборки значений кастомных полей", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ticketID uint64
		var value string
		if err := rows.Scan(&ticketID, &value); err != nil {
			return nil, err
		}
		values[ticketID] = value
	}
	return values, rows.Err()
}
