package seeders

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soporte/internal/repositories"
	"soporte/pkg/helpdeskquery"
)

func seedDemoTickets(ctx context.Context, db *pgxpool.Pool, count int) error {
	log.Printf("  - Наполнение таблицы 'helpdesk_ticket' (%d шт.)...", count)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	return repositories.WithTx(ctx, db, func(tx pgx.Tx) error {
		queueIDs, err := collectIDs(ctx, tx, "SELECT id FROM helpdesk_queue ORDER BY id")
		if err != nil {
			return err
		}
		staffIDs, err := collectIDs(ctx, tx, "SELECT id FROM auth_user WHERE is_staff ORDER BY id")
		if err != nil {
			return err
		}
		kbIDs, err := collectIDs(ctx, tx, "SELECT id FROM helpdesk_kbitem ORDER BY id")
		if err != nil {
			return err
		}
		if len(queueIDs) == 0 {
			return fmt.Errorf("нет очередей, сначала запустите -core")
		}

		var fieldID int
		if err := tx.QueryRow(ctx, "SELECT id FROM helpdesk_customfield WHERE name = $1", estimatedTimeField).Scan(&fieldID); err != nil {
			return fmt.Errorf("не найдено поле %q: %w", estimatedTimeField, err)
		}

		for i := 0; i < count; i++ {
			if err := insertDemoTicket(ctx, tx, rnd, queueIDs, staffIDs, kbIDs, fieldID); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertDemoTicket(ctx context.Context, tx pgx.Tx, rnd *rand.Rand, queueIDs, staffIDs, kbIDs []int, fieldID int) error {
	created := time.Now().Add(-time.Duration(rnd.Intn(60*24)) * time.Hour)
	var assigned, kbitem, due interface{}
	if len(staffIDs) > 0 && rnd.Intn(4) > 0 {
		assigned = staffIDs[rnd.Intn(len(staffIDs))]
	}
	if len(kbIDs) > 0 && rnd.Intn(3) == 0 {
		kbitem = kbIDs[rnd.Intn(len(kbIDs))]
	}
	if rnd.Intn(2) == 0 {
		due = created.Add(time.Duration(24+rnd.Intn(240)) * time.Hour)
	}

	var ticketID int
	err := tx.QueryRow(ctx, `
		INSERT INTO helpdesk_ticket (title, queue_id, created, modified, submitter_email, assigned_to_id,
			status, description, priority, due_date, kbitem_id)
		VALUES ($1, $2, $3, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		ticketTitles[rnd.Intn(len(ticketTitles))],
		queueIDs[rnd.Intn(len(queueIDs))],
		created,
		fmt.Sprintf("cliente%d@example.com", rnd.Intn(50)),
		assigned,
		helpdeskquery.StatusOpen+rnd.Intn(helpdeskquery.StatusDuplicate),
		"Creado por el seeder",
		1+rnd.Intn(5),
		due,
		kbitem,
	).Scan(&ticketID)
	if err != nil {
		return err
	}

	if rnd.Intn(3) > 0 {
		if _, err := tx.Exec(ctx,
			"INSERT INTO helpdesk_ticketcustomfieldvalue (ticket_id, field_id, value) VALUES ($1, $2, $3)",
			ticketID, fieldID, estimates[rnd.Intn(len(estimates))],
		); err != nil {
			return err
		}
	}
	for f := rnd.Intn(3); f > 0; f-- {
		minutes := 15 + rnd.Intn(180)
		if _, err := tx.Exec(ctx,
			"INSERT INTO helpdesk_followup (ticket_id, date, title, comment, time_spent) VALUES ($1, $2, 'Seguimiento', '', make_interval(mins => $3))",
			ticketID, created.Add(time.Hour), minutes,
		); err != nil {
			return err
		}
	}
	return nil
}

// seedSavedSearches - общий запрос "Abiertos sin asignar" от имени суперпользователя.
func seedSavedSearches(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'helpdesk_savedsearch'...")
	params := helpdeskquery.Default()
	params.Filtering.SetIsNull(helpdeskquery.FieldAssignedTo)
	token, err := helpdeskquery.Encode(params)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO helpdesk_savedsearch (user_id, title, shared, query)
		SELECT u.id, 'Abiertos sin asignar', TRUE, $1 FROM auth_user u
		WHERE u.is_superuser AND NOT EXISTS (SELECT 1 FROM helpdesk_savedsearch WHERE title = 'Abiertos sin asignar')
		ORDER BY u.id LIMIT 1`, token)
	return err
}

func collectIDs(ctx context.Context, tx pgx.Tx, query string) ([]int, error) {
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}
