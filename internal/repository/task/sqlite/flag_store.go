package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskMaster/internal/logger"
	repo "taskMaster/internal/repository"

	"go.uber.org/zap"
)

// FlagStore хранит флаги в таблице kv локальной базы и переживает перезапуск
type FlagStore struct {
	storage *Storage
}

func NewFlagStore(storage *Storage) *FlagStore {
	return &FlagStore{storage: storage}
}

func (f *FlagStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := f.storage.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logger.Error("Repository: Не удалось прочитать флаг", err, zap.String("key", key))
		return "", false, fmt.Errorf("чтение флага %s: %w", key, err)
	}
	return value, true, nil
}

func (f *FlagStore) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := f.storage.db.ExecContext(ctx, query, key, value, repo.FormatDateTime(f.storage.now()))
	if err != nil {
		logger.Error("Repository: Не удалось записать флаг", err, zap.String("key", key))
		return fmt.Errorf("запись флага %s: %w", key, err)
	}
	return nil
}
