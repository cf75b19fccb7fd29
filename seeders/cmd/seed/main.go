package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"soporte/pkg/config"
	"soporte/pkg/database/postgresql"
	"soporte/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runCore := flag.Bool("core", false, "Очереди, база знаний, кастомные поля")
	runStaff := flag.Bool("staff", false, "Сотрудники и права на очереди")
	runTickets := flag.Bool("tickets", false, "Демонстрационные тикеты и сохранённый запрос")
	ticketCount := flag.Int("count", 200, "Сколько тикетов создать с -tickets")
	runAll := flag.Bool("all", false, "Все сидеры (-core -staff -tickets)")
	flag.Parse()

	if !*runCore && !*runStaff && !*runTickets && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Пример: go run ./seeders/cmd/seed -all -count 500")
		return
	}

	cfg := config.New()
	dbPool, err := postgresql.ConnectDB(context.Background(), cfg.Postgres.DSN, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	log.Println("======================================================")

	if *runAll || *runCore {
		seeders.SeedDictionaries(dbPool)
		log.Println("======================================================")
	}
	if *runAll || *runStaff {
		seeders.SeedStaff(dbPool)
		log.Println("======================================================")
	}
	if *runAll || *runTickets {
		seeders.SeedTickets(dbPool, *ticketCount)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
}
