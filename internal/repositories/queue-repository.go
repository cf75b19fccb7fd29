package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"soporte/internal/entities"
)

type QueueRepositoryInterface interface {
	// GetQueues возвращает очереди, отсортированные по названию; access
	// дополнительно ограничивает q.id (nil - все очереди).
	GetQueues(ctx context.Context, access sq.Sqlizer) ([]entities.Queue, error)
}

type QueueRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewQueueRepository(storage *pgxpool.Pool, logger *zap.Logger) QueueRepositoryInterface {
	return &QueueRepository{storage: storage, logger: logger}
}

func (r *QueueRepository) GetQueues(ctx context.Context, access sq.Sqlizer) ([]entities.Queue, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	b := psql.Select("q.id", "q.title", "q.slug").From("helpdesk_queue AS q").OrderBy("q.title")
	if access != nil {
		b = b.Where(access)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("ошибка выборки очередей", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	queues := make([]entities.Queue, 0)
	for rows.Next() {
		var q entities.Queue
		if err := rows.Scan(&q.ID, &q.Title, &q.Slug); err != nil {
			return nil, err
		}
		queues = append(queues, q)
	}
	return queues, rows.Err()
}
