package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soporte/internal/repositories"
)

func seedQueues(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'helpdesk_queue'...")
	query := `INSERT INTO helpdesk_queue (title, slug, email_address) VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, email_address = EXCLUDED.email_address`

	return repositories.WithTx(ctx, db, func(tx pgx.Tx) error {
		for _, q := range queuesData {
			if _, err := tx.Exec(ctx, query, q.Title, q.Slug, q.Email); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedKnowledgeBase(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблиц 'helpdesk_kbcategory' и 'helpdesk_kbitem'...")

	return repositories.WithTx(ctx, db, func(tx pgx.Tx) error {
		for _, c := range kbData {
			var categoryID int
			err := tx.QueryRow(ctx, "SELECT id FROM helpdesk_kbcategory WHERE slug = $1", c.Slug).Scan(&categoryID)
			if err != nil {
				if err := tx.QueryRow(ctx,
					"INSERT INTO helpdesk_kbcategory (name, title, slug) VALUES ($1, $1, $2) RETURNING id",
					c.Category, c.Slug,
				).Scan(&categoryID); err != nil {
					return err
				}
			}
			for _, title := range c.Items {
				if _, err := tx.Exec(ctx, `
					INSERT INTO helpdesk_kbitem (category_id, title)
					SELECT $1::int, $2::text WHERE NOT EXISTS (SELECT 1 FROM helpdesk_kbitem WHERE category_id = $1 AND title = $2)`,
					categoryID, title,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func seedCustomFields(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'helpdesk_customfield'...")
	_, err := db.Exec(ctx, `INSERT INTO helpdesk_customfield (name, label, data_type, ordering)
		VALUES ($1, 'Tiempo estimado', 'varchar', 1) ON CONFLICT (name) DO NOTHING`, estimatedTimeField)
	return err
}
