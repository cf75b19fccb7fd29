package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"soporte/migrations"
	"soporte/pkg/config"
)

func main() {
	command := flag.String("command", "up", "команда goose: up, down, status, version, reset")
	flag.Parse()

	cfg := config.New()

	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("❌ Не удалось открыть базу: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("❌ %v", err)
	}

	log.Printf("▶️  goose %s", *command)
	if err := goose.Run(*command, db, ".", flag.Args()...); err != nil {
		log.Fatalf("❌ goose %s: %v", *command, err)
	}
	log.Println("✅ Миграции выполнены")
}
