package main

import (
	"database/sql"
	"errors"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
)

// Утилита ручного управления миграциями PostgreSQL.
// Без флагов применяет все миграции; -force N снимает dirty-состояние.
func main() {
	dsn := pflag.String("dsn", os.Getenv("DATABASE_DSN"), "строка подключения PostgreSQL (или DATABASE_DSN)")
	dir := pflag.String("dir", "migrations", "каталог с SQL-миграциями")
	force := pflag.Int("force", -1, "принудительно установить версию схемы")
	down := pflag.Bool("down", false, "откатить все миграции")
	pflag.Parse()

	if *dsn == "" {
		log.Fatal("Не задана строка подключения: используйте -dsn или DATABASE_DSN")
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+*dir, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case *force >= 0:
		log.Printf("Принудительная установка версии миграций %d...", *force)
		if err := m.Force(*force); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
	case *down:
		log.Println("Откат всех миграций...")
		err = m.Down()
	default:
		log.Println("Применение миграций...")
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Ошибка миграции: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("Не удалось прочитать версию схемы: %v", err)
	}
	log.Printf("Готово. Версия схемы: %d (dirty: %t)", version, dirty)
}
