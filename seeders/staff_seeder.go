package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soporte/internal/repositories"
)

// seedQueuePermissions - права "queue_access_<slug>", как их заводит хелпдеск.
func seedQueuePermissions(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'auth_permission'...")

	return repositories.WithTx(ctx, db, func(tx pgx.Tx) error {
		var contentTypeID int
		if err := tx.QueryRow(ctx, `
			INSERT INTO django_content_type (app_label, model) VALUES ('helpdesk', 'queue')
			ON CONFLICT (app_label, model) DO UPDATE SET model = EXCLUDED.model
			RETURNING id`).Scan(&contentTypeID); err != nil {
			return err
		}
		for _, q := range queuesData {
			if _, err := tx.Exec(ctx, `
				INSERT INTO auth_permission (name, content_type_id, codename) VALUES ($1, $2, $3)
				ON CONFLICT (content_type_id, codename) DO NOTHING`,
				"Permission for queue: "+q.Title, contentTypeID, "queue_access_"+q.Slug,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedStaffUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'auth_user'...")

	return repositories.WithTx(ctx, db, func(tx pgx.Tx) error {
		for i, s := range staffData {
			var userID int
			err := tx.QueryRow(ctx, `
				INSERT INTO auth_user (username, first_name, last_name, email, is_staff, is_superuser)
				VALUES ($1, $2, $3, $4, TRUE, $5)
				ON CONFLICT (username) DO UPDATE SET email = EXCLUDED.email
				RETURNING id`,
				s.Username, s.FirstName, s.LastName, s.Email, i == 0,
			).Scan(&userID)
			if err != nil {
				return err
			}

			if _, err := tx.Exec(ctx, `
				INSERT INTO helpdesk_usersettings (user_id, tickets_per_page) VALUES ($1, 25)
				ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
				return err
			}

			for _, slug := range s.Queues {
				if _, err := tx.Exec(ctx, `
					INSERT INTO auth_user_user_permissions (user_id, permission_id)
					SELECT $1::int, p.id FROM auth_permission p WHERE p.codename = 'queue_access_' || $2::text
					ON CONFLICT (user_id, permission_id) DO NOTHING`, userID, slug); err != nil {
					return err
				}
			}
			log.Printf("    - Сотрудник %s (id=%d)", s.Username, userID)
		}
		return nil
	})
}
