package query

import (
	"fmt"
	"slices"
	"time"

	"taskMaster/internal/models/task"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Field - поле сортировки, FieldNone её отключает
type Field int

const (
	FieldNone Field = iota
	FieldDate
	FieldEntityName
	FieldTaskType
	FieldTime
	FieldContactPerson
	FieldStatus
	FieldNote
)

var fieldNames = map[Field]string{
	FieldNone:          "none",
	FieldDate:          "date",
	FieldEntityName:    "entityName",
	FieldTaskType:      "taskType",
	FieldTime:          "time",
	FieldContactPerson: "contactPerson",
	FieldStatus:        "status",
	FieldNote:          "note",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField: пустая строка означает FieldNone
func ParseField(s string) (Field, error) {
	if s == "" {
		return FieldNone, nil
	}
	for f, name := range fieldNames {
		if name == s {
			return f, nil
		}
	}
	return FieldNone, fmt.Errorf("unknown sort field %q", s)
}

func (f Field) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Asc, Desc:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

// Sort - поле и направление сортировки списка
type Sort struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort - порядок при открытии списка: сначала новые даты
func DefaultSort() Sort {
	return Sort{Field: FieldDate, Direction: Desc}
}

// Toggle возвращает сортировку после выбора поля. Без явного направления
// повторный выбор того же поля меняет направление, другое поле начинает с asc.
func (s Sort) Toggle(field Field, dir *Direction) Sort {
	if dir != nil {
		return Sort{Field: field, Direction: *dir}
	}
	if s.Field == field {
		if s.Direction == Asc {
			return Sort{Field: field, Direction: Desc}
		}
		return Sort{Field: field, Direction: Asc}
	}
	return Sort{Field: field, Direction: Asc}
}

// NewCollator: при неразборчивой локали используется английская.
// Collator нельзя использовать из нескольких горутин.
func NewCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return collate.New(tag)
}

type sortValue struct {
	text  string
	day   time.Time
	isDay bool
}

// value достаёт значение поля; ok = false для неопределённого значения
// (пустой текст или неразборчивая дата)
func value(t task.Task, field Field) (sortValue, bool) {
	var s string
	switch field {
	case FieldDate:
		day, ok := ParseDate(t.Date)
		return sortValue{day: day, isDay: true}, ok
	case FieldEntityName:
		s = t.EntityName
	case FieldTaskType:
		s = string(t.TaskType)
	case FieldTime:
		s = t.Time
	case FieldContactPerson:
		s = t.ContactPerson
	case FieldStatus:
		s = string(t.Status)
	case FieldNote:
		s = t.Note
	default:
		return sortValue{}, false
	}
	return sortValue{text: s}, s != ""
}

// Compare сравнивает a и b по s и возвращает -1, 0 или 1. Неопределённые значения
// идут первыми при любом направлении, строки сравниваются через c.
func Compare(a, b task.Task, s Sort, c *collate.Collator) int {
	va, okA := value(a, s.Field)
	vb, okB := value(b, s.Field)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}

	var cmp int
	if va.isDay {
		cmp = va.day.Compare(vb.day)
	} else {
		if c == nil {
			c = NewCollator("en")
		}
		cmp = c.CompareString(va.text, vb.text)
	}
	if s.Direction == Desc {
		cmp = -cmp
	}
	return sign(cmp)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// SortTasks возвращает отсортированную копию, равные задачи сохраняют исходный порядок.
// С FieldNone вход возвращается как есть.
func SortTasks(tasks []task.Task, s Sort, c *collate.Collator) []task.Task {
	if s.Field == FieldNone {
		return tasks
	}
	if c == nil {
		c = NewCollator("en")
	}
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b task.Task) int {
		return Compare(a, b, s, c)
	})
	return out
}
