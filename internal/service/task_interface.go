package service

import (
	"context"

	"taskMaster/internal/migrator"
	"taskMaster/internal/models/task"
)

type TaskRepository interface {
	List(context.Context) ([]task.Task, error)
	Create(context.Context, task.Draft) (string, error)
	Update(context.Context, string, task.Patch) error
	Delete(context.Context, string) error
	SetStatus(context.Context, string, task.Status) error
	HealthCheck(context.Context) error
}

type Migrator interface {
	Run(context.Context) (migrator.Result, error)
	State() migrator.State
}
