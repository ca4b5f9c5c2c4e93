// Package migrator однократно переносит стартовые задачи в пустое хранилище.
//
// Успешный перенос запоминается в сохранённом флаге: после рестарта задачи
// не появятся снова, даже если все они были удалены.
package migrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskMaster/internal/logger"
	"taskMaster/internal/models/task"

	"go.uber.org/zap"
)

// DefaultFlagKey - ключ флага, если в конфиге он не задан
const DefaultFlagKey = "taskmaster.migrated"

type State string

const (
	NotMigrated State = "not_migrated"
	Migrating   State = "migrating"
	Migrated    State = "migrated"
)

// Store - куда переносим
type Store interface {
	List(ctx context.Context) ([]task.Task, error)
	BatchCreate(ctx context.Context, drafts []task.Draft) ([]string, error)
}

// FlagStore хранит отметку о завершённом переносе
type FlagStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Source - откуда берутся задачи для переноса
type Source interface {
	Name() string
	Load(ctx context.Context) ([]task.Draft, error)
}

// Result - итог одного Run
type Result struct {
	State    State `json:"state"`
	Inserted int   `json:"inserted"`
	Skipped  bool  `json:"skipped"`
}

type Coordinator struct {
	mu      sync.Mutex
	state   State
	pending bool // задачи перенесены, флаг ещё не записан
	store   Store
	flags   FlagStore
	source  Source
	flagKey string
	now     func() time.Time
}

type Option func(*Coordinator)

func WithFlagKey(key string) Option {
	return func(c *Coordinator) {
		if key != "" {
			c.flagKey = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// New читает флаг один раз; если он есть, координатор сразу в состоянии Migrated
func New(ctx context.Context, store Store, flags FlagStore, source Source, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		state:   NotMigrated,
		store:   store,
		flags:   flags,
		source:  source,
		flagKey: DefaultFlagKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	_, ok, err := flags.Get(ctx, c.flagKey)
	if err != nil {
		logger.Error("Migrator: Не удалось прочитать флаг миграции", err, zap.String("key", c.flagKey))
		return nil, fmt.Errorf("чтение флага миграции: %w", err)
	}
	if ok {
		c.state = Migrated
	}

	logger.Info("Migrator: Координатор создан",
		zap.String("state", string(c.state)), zap.String("source", source.Name()))
	return c, nil
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run переносит задачи, если хранилище пусто и переноса ещё не было.
// Вызовы выполняются по одному.
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Migrated {
		return Result{State: Migrated, Skipped: true}, nil
	}
	if c.pending {
		// повторный перенос запрещён: задачи уже в хранилище, даже если их потом удалили
		if err := c.saveFlag(ctx); err != nil {
			return Result{State: c.state}, err
		}
		c.pending = false
		c.state = Migrated
		logger.Info("Migrator: Флаг миграции сохранён повторной попыткой")
		return Result{State: Migrated}, nil
	}

	existing, err := c.store.List(ctx)
	if err != nil {
		logger.Error("Migrator: Не удалось проверить хранилище", err)
		return Result{State: c.state}, fmt.Errorf("проверка хранилища: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Migrator: Хранилище не пустое, миграция не нужна", zap.Int("tasks", len(existing)))
		return Result{State: c.state, Skipped: true}, nil
	}

	c.state = Migrating
	start := time.Now()

	drafts, err := c.source.Load(ctx)
	if err != nil {
		c.state = NotMigrated
		logger.Error("Migrator: Не удалось загрузить источник", err, zap.String("source", c.source.Name()))
		return Result{State: c.state}, fmt.Errorf("загрузка источника %s: %w", c.source.Name(), err)
	}

	var ids []string
	if len(drafts) > 0 {
		ids, err = c.store.BatchCreate(ctx, drafts)
		if err != nil {
			c.state = NotMigrated
			logger.Error("Migrator: Миграция не удалась", err, zap.String("source", c.source.Name()))
			return Result{State: c.state}, fmt.Errorf("перенос задач: %w", err)
		}
	}

	if err := c.saveFlag(ctx); err != nil {
		c.state = NotMigrated
		c.pending = true
		return Result{State: c.state, Inserted: len(ids)}, err
	}
	c.state = Migrated

	logger.Info("Migrator: Миграция завершена",
		zap.String("source", c.source.Name()),
		zap.Int("inserted", len(ids)),
		zap.Duration("ms", time.Since(start)))
	return Result{State: Migrated, Inserted: len(ids)}, nil
}

func (c *Coordinator) saveFlag(ctx context.Context) error {
	if err := c.flags.Set(ctx, c.flagKey, c.now().UTC().Format(time.RFC3339)); err != nil {
		logger.Error("Migrator: Не удалось сохранить флаг миграции", err, zap.String("key", c.flagKey))
		return fmt.Errorf("сохранение флага миграции: %w", err)
	}
	return nil
}
