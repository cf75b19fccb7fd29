package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"soporte/internal/entities"
	apperrors "soporte/pkg/errors"
)

const savedSearchFields = "id, user_id, title, shared, query"

type SavedSearchRepositoryInterface interface {
	// FindVisible ищет запрос, общий или принадлежащий userID.
	FindVisible(ctx context.Context, id, userID uint64) (*entities.SavedSearch, error)
	GetVisible(ctx context.Context, userID uint64) ([]entities.SavedSearch, error)
}

type SavedSearchRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSavedSearchRepository(storage *pgxpool.Pool, logger *zap.Logger) SavedSearchRepositoryInterface {
	return &SavedSearchRepository{storage: storage, logger: logger}
}

func (r *SavedSearchRepository) FindVisible(ctx context.Context, id, userID uint64) (*entities.SavedSearch, error) {
	query := "SELECT " + savedSearchFields + " FROM helpdesk_savedsearch WHERE id = $1 AND (shared OR user_id = $2)"

	var s entities.SavedSearch
	err := r.storage.QueryRow(ctx, query, id, userID).Scan(&s.ID, &s.UserID, &s.Title, &s.Shared, &s.Query)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SavedSearchRepository) GetVisible(ctx context.Context, userID uint64) ([]entities.SavedSearch, error) {
	query := "SELECT " + savedSearchFields + " FROM helpdesk_savedsearch WHERE user_id = $1 OR shared ORDER BY id"

	rows, err := r.storage.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("ошибка выборки сохранённых запросов", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	searches := make([]entities.SavedSearch, 0)
	for rows.Next() {
		var s entities.SavedSearch
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Shared, &s.Query); err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}
