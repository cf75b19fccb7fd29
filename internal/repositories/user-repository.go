package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"soporte/internal/entities"
	apperrors "soporte/pkg/errors"
)

const userSelectFields = "u.id, u.username, u.email, u.first_name, u.last_name, u.is_active, u.is_staff, u.is_superuser"

type UserRepositoryInterface interface {
	// FindUser возвращает пользователя с его настройками хелпдеска;
	// без строки настроек TicketsPerPage = defaultPerPage.
	FindUser(ctx context.Context, id uint64, defaultPerPage int) (*entities.User, error)
	GetActiveStaff(ctx context.Context) ([]entities.User, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func (r *UserRepository) FindUser(ctx context.Context, id uint64, defaultPerPage int) (*entities.User, error) {
	query := fmt.Sprintf(`
		SELECT %s, COALESCE(us.tickets_per_page, $2)
		FROM auth_user u
		LEFT JOIN helpdesk_usersettings us ON us.user_id = u.id
		WHERE u.id = $1`, userSelectFields)

	var u entities.User
	err := r.storage.QueryRow(ctx, query, id, defaultPerPage).Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.TicketsPerPage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.Error("ошибка поиска пользователя", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

// GetActiveStaff - активные сотрудники, кандидаты в исполнители.
func (r *UserRepository) GetActiveStaff(ctx context.Context) ([]entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM auth_user u WHERE u.is_active AND u.is_staff ORDER BY u.username", userSelectFields)

	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		r.logger.Error("ошибка выборки сотрудников", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		var u entities.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsActive, &u.IsStaff, &u.IsSuperuser); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
