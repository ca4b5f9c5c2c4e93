package worker

import (
	"context"
	"time"

	"taskMaster/internal/logger"
	"taskMaster/internal/migrator"

	"go.uber.org/zap"
)

const DefaultInterval = time.Minute

type Migrator interface {
	Migrate(context.Context) (migrator.Result, error)
	MigrationState() migrator.State
}

// MigrationWorker повторяет перенос стартовых задач, пока он не завершится успешно
type MigrationWorker struct {
	migrator Migrator
	interval time.Duration
}

func NewMigrationWorker(m Migrator, interval time.Duration) *MigrationWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &MigrationWorker{
		migrator: m,
		interval: interval,
	}
}

// Start работает до отмены ctx или до успешного переноса
func (w *MigrationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if w.Check(ctx) {
				logger.Info("Worker: Перенос завершён, фоновые попытки остановлены")
				return
			}
		case <-ctx.Done():
			logger.Info("Worker: Фоновый перенос останавливается")
			return
		}
	}
}

// Check делает одну попытку и сообщает, завершён ли перенос
func (w *MigrationWorker) Check(ctx context.Context) bool {
	if w.migrator.MigrationState() == migrator.Migrated {
		return true
	}

	start := time.Now()
	res, err := w.migrator.Migrate(ctx)
	if err != nil {
		logger.Warn("Worker: Перенос не удался, повторим позже",
			zap.Error(err),
			zap.Duration("retry_in", w.interval))
		return false
	}

	logger.Info("Worker: Попытка переноса выполнена",
		zap.String("state", string(res.State)),
		zap.Int("inserted", res.Inserted),
		zap.Bool("skipped", res.Skipped),
		zap.Duration("ms", time.Since(start)))
	// непустое хранилище тоже конец работы: переносить больше нечего
	return res.State == migrator.Migrated || res.Skipped
}
