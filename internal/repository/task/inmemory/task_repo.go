package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"taskMaster/internal/logger"
	"taskMaster/internal/models/task"
	repo "taskMaster/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskStorage struct {
	storage map[string]task.Task
	mtx     *sync.RWMutex
	ids     []string
	now     func() time.Time
}

type Option func(*TaskStorage)

// WithClock подменяет источник времени для createdAt
func WithClock(now func() time.Time) Option {
	return func(s *TaskStorage) {
		s.now = now
	}
}

func NewTaskStorage(opts ...Option) *TaskStorage {
	s := &TaskStorage{
		storage: make(map[string]task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []string{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

// List возвращает копии задач, новые первыми
func (s *TaskStorage) List(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]task.Task, 0, len(s.ids))
	for i := len(s.ids) - 1; i >= 0; i-- {
		res = append(res, s.storage[s.ids[i]])
	}
	return res, nil
}

func (s *TaskStorage) Create(ctx context.Context, draft task.Draft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("добавление задачи: %w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	id, err := s.insert(draft)
	if err != nil {
		return "", fmt.Errorf("добавление задачи: %w", err)
	}
	return id, nil
}

// BatchCreate добавляет все черновики или ни одного
func (s *TaskStorage) BatchCreate(ctx context.Context, drafts []task.Draft) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("пакетное добавление: %w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	snapshot := slices.Clone(s.ids)
	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		id, err := s.insert(d)
		if err != nil {
			for _, added := range ids {
				delete(s.storage, added)
			}
			s.ids = snapshot
			return nil, fmt.Errorf("пакетное добавление: %w", err)
		}
		ids = append(ids, id)
	}

	logger.Info("Repository: Пакетное добавление задач", zap.Int("count", len(ids)))
	return ids, nil
}

func (s *TaskStorage) insert(draft task.Draft) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	t := draft.ToTask(id.String(), repo.FormatDateTime(s.now()))
	s.storage[t.ID] = t
	s.ids = append(s.ids, t.ID)
	return t.ID, nil
}

func (s *TaskStorage) Update(ctx context.Context, id string, patch task.Patch) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}

	patch.Apply(&existing)
	s.storage[id] = existing
	return nil
}

func (s *TaskStorage) SetStatus(ctx context.Context, id string, status task.Status) error {
	return s.Update(ctx, id, task.NewPatch(task.WithStatus(status)))
}

// Delete не считает отсутствие задачи ошибкой
func (s *TaskStorage) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return nil
	}

	delete(s.storage, id)
	s.ids = slices.DeleteFunc(s.ids, func(v string) bool { return v == id })
	return nil
}
