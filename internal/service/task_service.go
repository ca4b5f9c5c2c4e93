package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskMaster/internal/logger"
	"taskMaster/internal/migrator"
	"taskMaster/internal/models/task"
	"taskMaster/internal/notify"
	"taskMaster/internal/query"
	repo "taskMaster/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type RepoType string

const (
	DBType       RepoType = "postgres"
	LocalType    RepoType = "sqlite"
	InMemoryType RepoType = "inmemory"
)

// TaskService держит кэш списка задач поверх репозитория.
// Любая успешная запись сбрасывает кэш, следующий запрос читает хранилище заново.
type TaskService struct {
	repo     TaskRepository
	RepoType RepoType
	migrator Migrator
	notifier notify.Notifier
	locale   string
	view     *query.View

	group      singleflight.Group
	mtx        sync.RWMutex
	cached     []task.Task
	valid      bool
	generation uint64
}

func NewTaskService(repo TaskRepository, repoType RepoType, opts ...Option) *TaskService {
	s := &TaskService{
		repo:     repo,
		RepoType: repoType,
		notifier: notify.Log{},
		locale:   "en",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.view = query.NewView(s.locale)
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return NewPersistenceError("health_check", err)
	}
	return nil
}

// Tasks возвращает кэшированный список задач, при необходимости загружая его.
// Возвращённый срез нельзя изменять.
func (s *TaskService) Tasks(ctx context.Context) ([]task.Task, error) {
	s.mtx.RLock()
	if s.valid {
		tasks := s.cached
		s.mtx.RUnlock()
		return tasks, nil
	}
	s.mtx.RUnlock()

	// загрузка общая для всех ждущих, отмена одного запроса её не прерывает
	v, err, _ := s.group.Do("tasks", func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.([]task.Task), nil
}

func (s *TaskService) load(ctx context.Context) ([]task.Task, error) {
	start := time.Now()

	s.mtx.RLock()
	generation := s.generation
	s.mtx.RUnlock()

	cacheable := true
	if s.migrator != nil {
		res, err := s.migrator.Run(ctx)
		if err != nil {
			// список всё равно отдаём, перенос повторится при следующей загрузке
			cacheable = false
			logger.Error("Service: Перенос данных не выполнен", err)
			s.notify(ctx, "Migration Failed", "Could not move existing tasks to the store.", notify.SeverityDestructive)
		} else if res.Inserted > 0 {
			s.notify(ctx, "Tasks Migrated", fmt.Sprintf("%d tasks have been moved to the store.", res.Inserted), notify.SeverityDefault)
		}
	}

	tasks, err := s.repo.List(ctx)
	if err != nil {
		logger.Error("Service: Не удалось загрузить задачи", err)
		return nil, NewPersistenceError("list", err)
	}

	s.mtx.Lock()
	if cacheable && s.generation == generation {
		s.cached = tasks
		s.valid = true
	}
	s.mtx.Unlock()

	logger.Info("Service: Список задач загружен",
		zap.Int("count", len(tasks)),
		zap.String("repo", string(s.RepoType)),
		zap.Duration("ms", time.Since(start)))
	return tasks, nil
}

// Invalidate сбрасывает кэш; загрузка, начатая до сброса, результат не сохранит
func (s *TaskService) Invalidate() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.cached = nil
	s.valid = false
	s.generation++
}

// View - отфильтрованный и отсортированный список для отображения
func (s *TaskService) View(ctx context.Context, f query.Filter, srt query.Sort) ([]task.Task, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	return s.view.Derive(tasks, f, srt), nil
}

func (s *TaskService) CreateTask(ctx context.Context, draft task.Draft) (string, error) {
	draft.Status = task.StatusOpen

	id, err := s.repo.Create(ctx, draft)
	if err != nil {
		logger.Error("Service: Не удалось создать задачу", err)
		s.notify(ctx, "Error", "Failed to create the task.", notify.SeverityDestructive)
		return "", NewPersistenceError("create", err)
	}

	s.Invalidate()
	logger.Info("Service: Задача создана", zap.String("task_id", id))
	s.notify(ctx, "Task Created", "A new task has been successfully created.", notify.SeverityDefault)
	return id, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, options ...task.PatchOption) error {
	patch := task.NewPatch(options...)

	if err := s.repo.Update(ctx, id, patch); err != nil {
		s.notify(ctx, "Error", "Failed to update the task.", notify.SeverityDestructive)
		return s.wrap("update", id, err)
	}

	s.Invalidate()
	logger.Info("Service: Задача обновлена", zap.String("task_id", id))
	s.notify(ctx, "Task Updated", "The task has been successfully updated.", notify.SeverityDefault)
	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.notify(ctx, "Error", "Failed to delete the task.", notify.SeverityDestructive)
		return s.wrap("delete", id, err)
	}

	s.Invalidate()
	logger.Info("Service: Задача удалена", zap.String("task_id", id))
	s.notify(ctx, "Task Deleted", "The task has been successfully deleted.", notify.SeverityDestructive)
	return nil
}

func (s *TaskService) SetStatus(ctx context.Context, id string, status task.Status) error {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		s.notify(ctx, "Error", "Failed to update the task status.", notify.SeverityDestructive)
		return s.wrap("set_status", id, err)
	}

	s.Invalidate()
	logger.Info("Service: Статус задачи изменён", zap.String("task_id", id), zap.String("status", string(status)))
	s.notify(ctx, "Status Updated", fmt.Sprintf("Task marked as %s.", status), notify.SeverityDefault)
	return nil
}

// Migrate запускает перенос явно, например повторно после сбоя
func (s *TaskService) Migrate(ctx context.Context) (migrator.Result, error) {
	if s.migrator == nil {
		return migrator.Result{State: migrator.Migrated, Skipped: true}, nil
	}

	res, err := s.migrator.Run(ctx)
	if err != nil {
		if res.Inserted > 0 {
			s.Invalidate()
		}
		logger.Error("Service: Перенос данных не выполнен", err)
		s.notify(ctx, "Migration Failed", "Could not move existing tasks to the store.", notify.SeverityDestructive)
		return res, NewMigrationError(err)
	}

	if res.Inserted > 0 {
		s.Invalidate()
		s.notify(ctx, "Tasks Migrated", fmt.Sprintf("%d tasks have been moved to the store.", res.Inserted), notify.SeverityDefault)
	}
	return res, nil
}

func (s *TaskService) MigrationState() migrator.State {
	if s.migrator == nil {
		return migrator.Migrated
	}
	return s.migrator.State()
}

func (s *TaskService) wrap(operation, id string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id), zap.String("operation", operation))
		return NewNotFound("задача", id, err)
	}
	logger.Error("Service: Ошибка хранилища", err, zap.String("target_id", id), zap.String("operation", operation))
	return NewPersistenceError(operation, err)
}

func (s *TaskService) notify(ctx context.Context, title, description string, severity notify.Severity) {
	s.notifier.Notify(ctx, notify.Notification{
		Title:       title,
		Description: description,
		Severity:    severity,
	})
}
