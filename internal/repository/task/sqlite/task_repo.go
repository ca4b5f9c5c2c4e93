package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskMaster/internal/logger"
	"taskMaster/internal/migrations"
	"taskMaster/internal/models/task"
	repo "taskMaster/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const slowQuery = time.Millisecond * 100

// Storage - локальное хранилище задач в файле SQLite
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

type Option func(*Storage)

func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// New открывает (или создаёт) базу по пути и применяет миграции
func New(ctx context.Context, path string, opts ...Option) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err, zap.String("path", path))
		return nil, fmt.Errorf("открытие sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	if err := migrations.UpSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Storage{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("Repository: Локальное хранилище SQLite открыто", zap.String("path", path))
	return s, nil
}

func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		logger.Warn("Repository: Ошибка закрытия SQLite", zap.Error(err))
		return
	}
	logger.Info("Repository: Локальное хранилище SQLite закрыто")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context) ([]task.Task, error) {
	start := time.Now()

	query := `SELECT
				id,
				date,
				entity_name,
				task_type,
				time,
				contact_person,
				note,
				status,
				created_at
				FROM tasks
				ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var (
			t         task.Task
			date      any
			createdAt any
		)
		err := rows.Scan(
			&t.ID,
			&date,
			&t.EntityName,
			&t.TaskType,
			&t.Time,
			&t.ContactPerson,
			&t.Note,
			&t.Status,
			&createdAt,
		)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		t.Date = repo.ISODate(date)
		t.CreatedAt = repo.ISODateTime(createdAt)
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Storage) insert(ctx context.Context, db execer, draft task.Draft) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("генерация id: %w", err)
	}

	t := draft.ToTask(id.String(), repo.FormatDateTime(s.now()))

	query := `INSERT INTO tasks
				(id, date, entity_name, task_type, time, contact_person, note, status, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.ExecContext(ctx, query,
		t.ID,
		t.Date,
		t.EntityName,
		string(t.TaskType),
		t.Time,
		t.ContactPerson,
		t.Note,
		string(t.Status),
		t.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func (s *Storage) Create(ctx context.Context, draft task.Draft) (string, error) {
	start := time.Now()

	id, err := s.insert(ctx, s.db, draft)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return "", fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return id, nil
}

// BatchCreate вставляет все черновики в одной транзакции
func (s *Storage) BatchCreate(ctx context.Context, drafts []task.Draft) ([]string, error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err)
		return nil, fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		id, err := s.insert(ctx, tx, d)
		if err != nil {
			logger.Error("Repository: Пакетное добавление прервано", err, zap.Int("inserted", len(ids)))
			return nil, fmt.Errorf("пакетное добавление: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}

	logger.Info("Repository: Пакетное добавление задач",
		zap.Int("count", len(ids)), zap.Duration("ms", time.Since(start)))
	return ids, nil
}

// Update меняет только поля, заданные в patch
func (s *Storage) Update(ctx context.Context, id string, patch task.Patch) error {
	start := time.Now()

	cols, vals := patch.Columns()
	if len(cols) == 0 {
		return s.exists(ctx, id)
	}

	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		sets = append(sets, col+" = ?")
	}
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = ?`, strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, query, append(vals, id)...)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.String("task_id", id))
		return fmt.Errorf("обновление задачи: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if affected == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) SetStatus(ctx context.Context, id string, status task.Status) error {
	return s.Update(ctx, id, task.NewPatch(task.WithStatus(status)))
}

// Delete не считает отсутствие задачи ошибкой
func (s *Storage) Delete(ctx context.Context, id string) error {
	start := time.Now()

	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) exists(ctx context.Context, id string) error {
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM tasks WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return repo.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("проверка задачи: %w", err)
	}
	return nil
}
