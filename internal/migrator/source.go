package migrator

import (
	"context"
	"fmt"
	"slices"

	"taskMaster/internal/models/task"
)

type Lister interface {
	List(ctx context.Context) ([]task.Task, error)
}

// StoreSource читает задачи другого хранилища, обычно локального.
// Старые задачи идут первыми, чтобы в новом хранилище сохранился порядок.
type StoreSource struct {
	name  string
	store Lister
}

func NewStoreSource(name string, store Lister) StoreSource {
	return StoreSource{name: name, store: store}
}

func (s StoreSource) Name() string {
	return "store:" + s.name
}

func (s StoreSource) Load(ctx context.Context) ([]task.Draft, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", s.name, err)
	}

	drafts := make([]task.Draft, 0, len(tasks))
	for _, t := range slices.Backward(tasks) {
		drafts = append(drafts, task.FromTask(t))
	}
	return drafts, nil
}
