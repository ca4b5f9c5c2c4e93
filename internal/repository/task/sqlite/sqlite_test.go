package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"taskMaster/internal/models/task"
	"taskMaster/internal/repository"
	"taskMaster/internal/repository/task/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(entity, date string) task.Draft {
	return task.Draft{
		Date:          date,
		EntityName:    entity,
		TaskType:      task.TypeMeeting,
		Time:          "11:00",
		ContactPerson: "Robert Brown",
	}
}

func newStorage(t *testing.T) (*sqlite.Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	storage, err := sqlite.New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(storage.Close)
	return storage, path
}

// TestStorage_CreateAndList тестирует создание и порядок по createdAt
func TestStorage_CreateAndList(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 7, 14, 8, 0, 0, 0, time.UTC)
	storage, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "tasks.db"), sqlite.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	require.NoError(t, err)
	defer storage.Close()

	first, err := storage.Create(ctx, draft("Gamma Inc", "2024-07-14"))
	require.NoError(t, err)
	second, err := storage.Create(ctx, draft("Acme Corp", "2024-07-15"))
	require.NoError(t, err)

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second, tasks[0].ID)
	assert.Equal(t, first, tasks[1].ID)

	assert.Equal(t, "2024-07-15", tasks[0].Date)
	assert.Equal(t, task.StatusOpen, tasks[0].Status)
	assert.Equal(t, "2024-07-14T08:02:00.000Z", tasks[0].CreatedAt)
	assert.Empty(t, tasks[0].Note)
}

func TestStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage, _ := newStorage(t)

	id, err := storage.Create(ctx, draft("Gamma Inc", "2024-07-14"))
	require.NoError(t, err)

	require.NoError(t, storage.Update(ctx, id, task.NewPatch(
		task.WithNote("Client onboarding meeting completed."),
		task.WithStatus(task.StatusClosed),
	)))

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Client onboarding meeting completed.", tasks[0].Note)
	assert.Equal(t, task.StatusClosed, tasks[0].Status)
	assert.Equal(t, "Gamma Inc", tasks[0].EntityName)

	assert.ErrorIs(t, storage.Update(ctx, "missing", task.NewPatch(task.WithNote("x"))), repository.ErrNotFound)
	assert.ErrorIs(t, storage.Update(ctx, "missing", task.NewPatch()), repository.ErrNotFound)
	assert.NoError(t, storage.Update(ctx, id, task.NewPatch()))
}

func TestStorage_SetStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	storage, _ := newStorage(t)

	id, err := storage.Create(ctx, draft("Gamma Inc", "2024-07-14"))
	require.NoError(t, err)

	require.NoError(t, storage.SetStatus(ctx, id, task.StatusClosed))
	assert.ErrorIs(t, storage.SetStatus(ctx, "missing", task.StatusClosed), repository.ErrNotFound)

	require.NoError(t, storage.Delete(ctx, id))
	assert.NoError(t, storage.Delete(ctx, id))

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestStorage_BatchCreate(t *testing.T) {
	ctx := context.Background()
	storage, _ := newStorage(t)

	ids, err := storage.BatchCreate(ctx, []task.Draft{
		draft("Acme Corp", "2024-07-15"),
		draft("Beta Solutions", "2024-07-16"),
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

// TestStorage_BatchCreateAtomic тестирует откат всей пачки при ошибке
func TestStorage_BatchCreateAtomic(t *testing.T) {
	ctx := context.Background()
	storage, _ := newStorage(t)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err := storage.BatchCreate(cancelled, []task.Draft{draft("Acme Corp", "2024-07-15")})
	require.Error(t, err)

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// TestStorage_Reopen тестирует, что данные и флаги переживают переоткрытие базы
func TestStorage_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	storage, err := sqlite.New(ctx, path)
	require.NoError(t, err)
	_, err = storage.Create(ctx, draft("Acme Corp", "2024-07-15"))
	require.NoError(t, err)
	require.NoError(t, sqlite.NewFlagStore(storage).Set(ctx, "taskmaster.migrated", "true"))
	storage.Close()

	reopened, err := sqlite.New(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	tasks, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	value, ok, err := sqlite.NewFlagStore(reopened).Get(ctx, "taskmaster.migrated")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestFlagStore(t *testing.T) {
	ctx := context.Background()
	storage, _ := newStorage(t)
	flags := sqlite.NewFlagStore(storage)

	_, ok, err := flags.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, flags.Set(ctx, "key", "one"))
	require.NoError(t, flags.Set(ctx, "key", "two"))

	value, ok, err := flags.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", value)
}

func TestStorage_HealthCheck(t *testing.T) {
	storage, _ := newStorage(t)
	assert.NoError(t, storage.HealthCheck(context.Background()))
}
