package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"taskMaster/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql
var files embed.FS

const (
	postgresDir = "sql/postgres"
	sqliteDir   = "sql/sqlite"
)

// UpPostgres применяет миграции удалённого хранилища.
// Мигратор открывает своё соединение, пул приложения не затрагивается.
func UpPostgres(databaseURL string) error {
	m, err := newPostgres(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	return up(m, "postgres")
}

// DownPostgres откатывает все миграции удалённого хранилища
func DownPostgres(databaseURL string) error {
	m, err := newPostgres(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	logger.Info("Migrations: Откат миграций", zap.String("driver", "postgres"))
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: Не удалось откатить миграции", err)
		return fmt.Errorf("откат миграций: %w", err)
	}
	return nil
}

// UpSQLite применяет миграции локального хранилища на открытой базе.
// Базу не закрывает: ею владеет вызывающий.
func UpSQLite(db *sql.DB) error {
	src, err := iofs.New(files, sqliteDir)
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("драйвер миграций sqlite: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("создание мигратора: %w", err)
	}

	return up(m, "sqlite")
}

func newPostgres(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, postgresDir)
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, PgxURL(databaseURL))
	if err != nil {
		logger.Error("Migrations: Не удалось подключиться к базе", err)
		return nil, fmt.Errorf("создание мигратора: %w", err)
	}
	return m, nil
}

func up(m *migrate.Migrate, driver string) error {
	logger.Info("Migrations: Применение миграций", zap.String("driver", driver))

	err := m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("Migrations: Схема актуальна", zap.String("driver", driver))
		return nil
	}
	if err != nil {
		logger.Error("Migrations: Не удалось применить миграции", err, zap.String("driver", driver))
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Migrations: Миграции применены", zap.String("driver", driver), zap.Uint("version", version))
	return nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("Migrations: Ошибка закрытия источника", zap.Error(srcErr))
	}
	if dbErr != nil {
		logger.Warn("Migrations: Ошибка закрытия соединения", zap.Error(dbErr))
	}
}

// PgxURL переводит postgres:// адрес в схему драйвера pgx/v5 мигратора
func PgxURL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
