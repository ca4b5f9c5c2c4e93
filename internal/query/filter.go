// Package query - фильтрация и сортировка: из сохранённых задач получается
// список, который видит пользователь.
package query

import (
	"strings"
	"time"

	"taskMaster/internal/models/task"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// All - значение «любой» для фильтров по типу и статусу
const All = "all"

// Filter - набор независимых условий. Пустое текстовое поле, All для типа и статуса
// и нулевые DateFrom/DateTo условие отключают.
type Filter struct {
	EntityName    string        `json:"entityName"`
	ContactPerson string        `json:"contactPerson"`
	Note          string        `json:"note"`
	TaskType      task.TaskType `json:"taskType"`
	Status        task.Status   `json:"status"`
	DateFrom      time.Time     `json:"dateFrom,omitzero"`
	DateTo        time.Time     `json:"dateTo,omitzero"`
}

// DefaultFilter - фильтр со всеми выключенными условиями
func DefaultFilter() Filter {
	return Filter{TaskType: All, Status: All}
}

// Equal сравнивает фильтры по значению
func (f Filter) Equal(o Filter) bool {
	return f.EntityName == o.EntityName &&
		f.ContactPerson == o.ContactPerson &&
		f.Note == o.Note &&
		f.TaskType == o.TaskType &&
		f.Status == o.Status &&
		f.DateFrom.Equal(o.DateFrom) &&
		f.DateTo.Equal(o.DateTo)
}

// Apply оставляет задачи, прошедшие все включённые условия, в исходном порядке.
// Ошибок не бывает: задача с битой датой просто не попадает в ограниченный диапазон.
func Apply(tasks []task.Task, f Filter) []task.Task {
	lower := cases.Lower(language.Und)
	entity := lower.String(f.EntityName)
	contact := lower.String(f.ContactPerson)
	note := lower.String(f.Note)

	var from, to time.Time
	if !f.DateFrom.IsZero() {
		from = startOfDay(f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		to = endOfDay(f.DateTo)
	}

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if entity != "" && !strings.Contains(lower.String(t.EntityName), entity) {
			continue
		}
		if contact != "" && !strings.Contains(lower.String(t.ContactPerson), contact) {
			continue
		}
		if note != "" && !strings.Contains(lower.String(t.Note), note) {
			continue
		}
		if !matchesEnum(string(f.TaskType), string(t.TaskType)) {
			continue
		}
		if !matchesEnum(string(f.Status), string(t.Status)) {
			continue
		}
		if !from.IsZero() || !to.IsZero() {
			day, ok := ParseDate(t.Date)
			if !ok {
				continue
			}
			if !from.IsZero() && day.Before(from) {
				continue
			}
			if !to.IsZero() && day.After(to) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// пустое значение фильтра работает как All
func matchesEnum(filter, value string) bool {
	return filter == "" || filter == All || filter == value
}

// ParseDate читает дату задачи как начало календарного дня (UTC).
// Принимаются "2006-01-02" и RFC 3339; для второго день берётся в смещении самой строки.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, true
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return startOfDay(ts), true
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
