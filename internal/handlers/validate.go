package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskMaster/internal/models/task"
	"taskMaster/internal/query"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// ParseFilter читает фильтр из параметров запроса; отсутствующий параметр не ограничивает выборку
func ParseFilter(values url.Values) (query.Filter, error) {
	f := query.DefaultFilter()
	f.EntityName = strings.TrimSpace(values.Get("entityName"))
	f.ContactPerson = strings.TrimSpace(values.Get("contactPerson"))
	f.Note = strings.TrimSpace(values.Get("note"))

	if v := values.Get("taskType"); v != "" && v != query.All {
		if !task.TaskType(v).Valid() {
			return f, &task.ValidationError{Field: "taskType", Reason: "неизвестный тип задачи"}
		}
		f.TaskType = task.TaskType(v)
	}

	if v := values.Get("status"); v != "" && v != query.All {
		if !task.Status(v).Valid() {
			return f, &task.ValidationError{Field: "status", Reason: "неизвестный статус"}
		}
		f.Status = task.Status(v)
	}

	var err error
	if f.DateFrom, err = parseDateParam(values, "dateFrom"); err != nil {
		return f, err
	}
	if f.DateTo, err = parseDateParam(values, "dateTo"); err != nil {
		return f, err
	}
	return f, nil
}

func parseDateParam(values url.Values, name string) (time.Time, error) {
	v := values.Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, &task.ValidationError{Field: name, Reason: "ожидается дата YYYY-MM-DD"}
	}
	return d, nil
}

// ParseSort читает сортировку: sort и dir задают текущее состояние,
// toggle переключает его так же, как клик по заголовку колонки
func ParseSort(values url.Values) (query.Sort, error) {
	s := query.DefaultSort()

	if v, ok := lookup(values, "sort"); ok {
		field, err := query.ParseField(v)
		if err != nil {
			return s, &task.ValidationError{Field: "sort", Reason: err.Error()}
		}
		if field != s.Field {
			s = query.Sort{Field: field, Direction: query.Asc}
		}
	}

	if v, ok := lookup(values, "dir"); ok {
		dir, err := query.ParseDirection(v)
		if err != nil {
			return s, &task.ValidationError{Field: "dir", Reason: err.Error()}
		}
		s.Direction = dir
	}

	if v, ok := lookup(values, "toggle"); ok {
		field, err := query.ParseField(v)
		if err != nil {
			return s, &task.ValidationError{Field: "toggle", Reason: err.Error()}
		}
		s = s.Toggle(field, nil)
	}
	return s, nil
}

func lookup(values url.Values, key string) (string, bool) {
	if !values.Has(key) {
		return "", false
	}
	return values.Get(key), true
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id не может быть пустым")
	}
	return nil
}
