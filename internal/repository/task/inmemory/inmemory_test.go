package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"taskMaster/internal/models/task"
	"taskMaster/internal/repository"
	"taskMaster/internal/repository/task/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(entity string) task.Draft {
	return task.Draft{
		Date:          "2024-07-15",
		EntityName:    entity,
		TaskType:      task.TypeCall,
		Time:          "10:00",
		ContactPerson: "John Doe",
	}
}

// TestTaskStorage_HealthCheck тестирует проверку здоровья
func TestTaskStorage_HealthCheck(t *testing.T) {
	storage := inmemory.NewTaskStorage()
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// TestTaskStorage_Create тестирует создание задачи
func TestTaskStorage_Create(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	storage := inmemory.NewTaskStorage(inmemory.WithClock(func() time.Time { return fixed }))

	id, err := storage.Create(ctx, draft("Acme Corp"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
	assert.Equal(t, task.StatusOpen, tasks[0].Status)
	assert.Equal(t, "2024-07-15T09:00:00.000Z", tasks[0].CreatedAt)
}

// TestTaskStorage_List тестирует порядок: новые задачи первыми
func TestTaskStorage_List(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	for _, name := range []string{"first", "second", "third"} {
		_, err := storage.Create(ctx, draft(name))
		require.NoError(t, err)
	}

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "third", tasks[0].EntityName)
	assert.Equal(t, "first", tasks[2].EntityName)

	// изменение копии не затрагивает хранилище
	tasks[0].EntityName = "changed"
	again, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "third", again[0].EntityName)
}

func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	id, err := storage.Create(ctx, draft("Acme Corp"))
	require.NoError(t, err)

	err = storage.Update(ctx, id, task.NewPatch(task.WithNote("Updated"), task.WithTime("11:30")))
	require.NoError(t, err)

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Updated", tasks[0].Note)
	assert.Equal(t, "11:30", tasks[0].Time)
	assert.Equal(t, "Acme Corp", tasks[0].EntityName)

	t.Run("not found", func(t *testing.T) {
		err := storage.Update(ctx, "missing", task.NewPatch(task.WithNote("x")))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("empty patch checks existence", func(t *testing.T) {
		assert.NoError(t, storage.Update(ctx, id, task.NewPatch()))
		assert.ErrorIs(t, storage.Update(ctx, "missing", task.NewPatch()), repository.ErrNotFound)
	})
}

func TestTaskStorage_SetStatus(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	id, err := storage.Create(ctx, draft("Acme Corp"))
	require.NoError(t, err)

	require.NoError(t, storage.SetStatus(ctx, id, task.StatusClosed))
	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.StatusClosed, tasks[0].Status)

	assert.ErrorIs(t, storage.SetStatus(ctx, "missing", task.StatusOpen), repository.ErrNotFound)
}

// TestTaskStorage_Delete тестирует удаление, в том числе несуществующей задачи
func TestTaskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	id, err := storage.Create(ctx, draft("Acme Corp"))
	require.NoError(t, err)
	keep, err := storage.Create(ctx, draft("Beta Solutions"))
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, id))
	assert.NoError(t, storage.Delete(ctx, id))

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, keep, tasks[0].ID)
}

func TestTaskStorage_BatchCreate(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	ids, err := storage.BatchCreate(ctx, []task.Draft{draft("a"), draft("b")})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	t.Run("cancelled context writes nothing", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := storage.BatchCreate(cancelled, []task.Draft{draft("c")})
		assert.Error(t, err)

		tasks, err := storage.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})
}

// TestTaskStorage_Concurrent тестирует конкурентный доступ
func TestTaskStorage_Concurrent(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := storage.Create(ctx, draft(fmt.Sprintf("entity-%d", i)))
			assert.NoError(t, err)
			_, err = storage.List(ctx)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 20)
}

func TestFlagStore(t *testing.T) {
	ctx := context.Background()
	flags := inmemory.NewFlagStore()

	_, ok, err := flags.Get(ctx, "migrated")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, flags.Set(ctx, "migrated", "true"))
	value, ok, err := flags.Get(ctx, "migrated")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
}
