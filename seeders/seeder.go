package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDictionaries наполняет очереди, базу знаний и кастомные поля.
func SeedDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения справочников хелпдеска...")

	if err := seedQueues(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Очередей (helpdesk_queue): %v", err)
	}
	if err := seedKnowledgeBase(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Базы знаний (helpdesk_kbitem): %v", err)
	}
	if err := seedCustomFields(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Кастомных полей: %v", err)
	}
	log.Println("✅ Наполнение справочников завершено!")
}

// SeedStaff создаёт сотрудников и права доступа к очередям. Зависит от очередей.
func SeedStaff(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания сотрудников...")

	if err := seedQueuePermissions(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Прав на очереди: %v", err)
	}
	if err := seedStaffUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания Сотрудников: %v", err)
	}
	log.Println("✅ Сотрудники созданы!")
}

// SeedTickets создаёт демонстрационные тикеты с трудозатратами и сохранённым запросом.
func SeedTickets(db *pgxpool.Pool, count int) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания тикетов...")

	if err := seedDemoTickets(ctx, db, count); err != nil {
		log.Fatalf("❌ Ошибка создания Тикетов: %v", err)
	}
	if err := seedSavedSearches(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания Сохранённых запросов: %v", err)
	}
	log.Println("✅ Тикеты созданы!")
}
