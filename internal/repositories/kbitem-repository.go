package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"soporte/internal/entities"
)

type KBItemRepositoryInterface interface {
	GetKBItems(ctx context.Context) ([]entities.KBItem, error)
}

type KBItemRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewKBItemRepository(storage *pgxpool.Pool, logger *zap.Logger) KBItemRepositoryInterface {
	return &KBItemRepository{storage: storage, logger: logger}
}

func (r *KBItemRepository) GetKBItems(ctx context.Context) ([]entities.KBItem, error) {
	query := `
		SELECT kb.id, kb.title, COALESCE(kc.name, '')
		FROM helpdesk_kbitem kb
		LEFT JOIN helpdesk_kbcategory kc ON kc.id = kb.category_id
		ORDER BY kb.id`

	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		r.logger.Error("ошибка выборки статей базы знаний", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make([]entities.KBItem, 0)
	for rows.Next() {
		var item entities.KBItem
		if err := rows.Scan(&item.ID, &item.Title, &item.CategoryTitle); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
