package dto

import (
	"time"

	"taskMaster/internal/migrator"
	"taskMaster/internal/models/task"
	"taskMaster/internal/query"
)

type CreateTaskRequest struct {
	Date          string        `json:"date"`
	EntityName    string        `json:"entityName"`
	TaskType      task.TaskType `json:"taskType"`
	Time          string        `json:"time"`
	ContactPerson string        `json:"contactPerson"`
	Note          string        `json:"note,omitempty"`
}

func (r CreateTaskRequest) ToDraft() task.Draft {
	return task.Draft{
		Date:          r.Date,
		EntityName:    r.EntityName,
		TaskType:      r.TaskType,
		Time:          r.Time,
		ContactPerson: r.ContactPerson,
		Note:          r.Note,
		Status:        task.StatusOpen,
	}
}

type UpdateTaskRequest struct {
	Date          *string        `json:"date,omitempty"`
	EntityName    *string        `json:"entityName,omitempty"`
	TaskType      *task.TaskType `json:"taskType,omitempty"`
	Time          *string        `json:"time,omitempty"`
	ContactPerson *string        `json:"contactPerson,omitempty"`
	Note          *string        `json:"note,omitempty"`
	Status        *task.Status   `json:"status,omitempty"`
}

// Options переводит заданные поля запроса в опции патча
func (r UpdateTaskRequest) Options() []task.PatchOption {
	var opts []task.PatchOption
	if r.Date != nil {
		opts = append(opts, task.WithDate(*r.Date))
	}
	if r.EntityName != nil {
		opts = append(opts, task.WithEntityName(*r.EntityName))
	}
	if r.TaskType != nil {
		opts = append(opts, task.WithTaskType(*r.TaskType))
	}
	if r.Time != nil {
		opts = append(opts, task.WithTime(*r.Time))
	}
	if r.ContactPerson != nil {
		opts = append(opts, task.WithContactPerson(*r.ContactPerson))
	}
	if r.Note != nil {
		opts = append(opts, task.WithNote(*r.Note))
	}
	if r.Status != nil {
		// пустой статус должен дойти до валидации, WithStatus его отбрасывает
		status := *r.Status
		opts = append(opts, func(p *task.Patch) { p.Status = &status })
	}
	return opts
}

type StatusRequest struct {
	Status task.Status `json:"status"`
}

type TaskResponse struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	EntityName    string `json:"entityName"`
	TaskType      string `json:"taskType"`
	Time          string `json:"time"`
	ContactPerson string `json:"contactPerson"`
	Note          string `json:"note,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

func FromTask(t task.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Date:          t.Date,
		EntityName:    t.EntityName,
		TaskType:      string(t.TaskType),
		Time:          t.Time,
		ContactPerson: t.ContactPerson,
		Note:          t.Note,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
	}
}

func FromTaskList(tasks []task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type FilterResponse struct {
	EntityName    string `json:"entityName,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Note          string `json:"note,omitempty"`
	TaskType      string `json:"taskType"`
	Status        string `json:"status"`
	DateFrom      string `json:"dateFrom,omitempty"`
	DateTo        string `json:"dateTo,omitempty"`
}

func FromFilter(f query.Filter) FilterResponse {
	res := FilterResponse{
		EntityName:    f.EntityName,
		ContactPerson: f.ContactPerson,
		Note:          f.Note,
		TaskType:      orAll(string(f.TaskType)),
		Status:        orAll(string(f.Status)),
	}
	if !f.DateFrom.IsZero() {
		res.DateFrom = f.DateFrom.Format(time.DateOnly)
	}
	if !f.DateTo.IsZero() {
		res.DateTo = f.DateTo.Format(time.DateOnly)
	}
	return res
}

func orAll(v string) string {
	if v == "" {
		return query.All
	}
	return v
}

type SortResponse struct {
	Field     query.Field     `json:"field"`
	Direction query.Direction `json:"direction"`
}

type ViewResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Filter FilterResponse `json:"filter"`
	Sort   SortResponse   `json:"sort"`
	Count  int            `json:"count"`
}

func NewViewResponse(tasks []task.Task, f query.Filter, s query.Sort) ViewResponse {
	return ViewResponse{
		Tasks:  FromTaskList(tasks),
		Filter: FromFilter(f),
		Sort:   SortResponse{Field: s.Field, Direction: s.Direction},
		Count:  len(tasks),
	}
}

type MigrateResponse struct {
	State    migrator.State `json:"state"`
	Inserted int            `json:"inserted"`
	Skipped  bool           `json:"skipped"`
}
