// Package migrations - схема таблиц хелпдеска, которые читает сервис.
// В проде её создаёт основное приложение; здесь она нужна для локальной
// разработки и интеграционных тестов.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
