package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskMaster/internal/logger"
	"taskMaster/internal/models/task"
	repo "taskMaster/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = time.Millisecond * 100

type Config struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxConns:        10,
		MinConns:        2,
		MaxConnIdleTime: time.Minute * 5,
	}
}

// Storage - удалённое хранилище задач в PostgreSQL
type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, cfg Config) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		config.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// List возвращает все задачи, новые первыми
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

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var (
			t         task.Task
			id        pgtype.UUID
			date      pgtype.Date
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&id,
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

		t.ID = uuid.UUID(id.Bytes).String()
		t.Date = repo.ISODate(date)
		t.CreatedAt = repo.ISODateTime(createdAt)
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)), zap.Int("rows", len(tasks)))
	}
	return tasks, nil
}

const insertQuery = `INSERT INTO tasks
				(id, date, entity_name, task_type, time, contact_person, note, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func insertArgs(draft task.Draft) (string, []any, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("генерация id: %w", err)
	}

	date, err := toDate(draft.Date)
	if err != nil {
		return "", nil, err
	}

	t := draft.ToTask(id.String(), "")
	return t.ID, []any{
		id,
		date,
		t.EntityName,
		string(t.TaskType),
		t.Time,
		t.ContactPerson,
		t.Note,
		string(t.Status),
	}, nil
}

func (s *Storage) Create(ctx context.Context, draft task.Draft) (string, error) {
	start := time.Now()

	id, args, err := insertArgs(draft)
	if err != nil {
		return "", fmt.Errorf("добавление задачи: %w", err)
	}

	_, err = s.pool.Exec(ctx, insertQuery, args...)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return "", fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return id, nil
}

// BatchCreate отправляет вставки одной пачкой внутри транзакции: либо все, либо ни одной
func (s *Storage) BatchCreate(ctx context.Context, drafts []task.Draft) ([]string, error) {
	start := time.Now()

	ids := make([]string, 0, len(drafts))
	batch := &pgx.Batch{}
	for _, d := range drafts {
		id, args, err := insertArgs(d)
		if err != nil {
			return nil, fmt.Errorf("пакетное добавление: %w", err)
		}
		ids = append(ids, id)
		batch.Queue(insertQuery, args...)
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for range drafts {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return err
			}
		}
		return results.Close()
	})
	if err != nil {
		logger.Error("Repository: Пакетное добавление прервано", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("пакетное добавление: %w", err)
	}

	logger.Info("Repository: Пакетное добавление задач",
		zap.Int("count", len(ids)), zap.Duration("ms", time.Since(start)))
	return ids, nil
}

// Update меняет только поля, заданные в patch
func (s *Storage) Update(ctx context.Context, id string, patch task.Patch) error {
	start := time.Now()

	taskID, err := uuid.Parse(id)
	if err != nil {
		return repo.ErrNotFound
	}

	cols, vals := patch.Columns()
	if len(cols) == 0 {
		return s.exists(ctx, taskID)
	}

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(vals)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		if col == "date" {
			date, err := toDate(vals[i].(string))
			if err != nil {
				return fmt.Errorf("обновление задачи: %w", err)
			}
			args = append(args, date)
			continue
		}
		args = append(args, vals[i])
	}
	args = append(args, taskID)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.String("task_id", id))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
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

	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}

	_, err = s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) exists(ctx context.Context, id uuid.UUID) error {
	var found pgtype.UUID
	err := s.pool.QueryRow(ctx, `SELECT id FROM tasks WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("проверка задачи: %w", err)
	}
	return nil
}

func toDate(value string) (pgtype.Date, error) {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("дата %q: %w", value, err)
	}
	return pgtype.Date{Time: d, Valid: true}, nil
}
