package handlers

import (
	"context"

	"taskMaster/internal/migrator"
	"taskMaster/internal/models/task"
	"taskMaster/internal/notify"
	"taskMaster/internal/query"
)

type Service interface {
	HealthCheck(context.Context) error
	View(context.Context, query.Filter, query.Sort) ([]task.Task, error)
	CreateTask(context.Context, task.Draft) (string, error)
	UpdateTask(context.Context, string, ...task.PatchOption) error
	DeleteTask(context.Context, string) error
	SetStatus(context.Context, string, task.Status) error
	Migrate(context.Context) (migrator.Result, error)
}

type NotificationSource interface {
	Recent() []notify.Notification
}
