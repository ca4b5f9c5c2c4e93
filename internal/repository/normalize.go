package repository

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ISODateTimeLayout - формат createdAt, как у JS toISOString
const ISODateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// ISODate приводит хранимое значение даты к строке YYYY-MM-DD.
// Нераспознанная строка возвращается как есть: фильтры сами обработают битую дату.
func ISODate(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeDateString(val)
	case []byte:
		return normalizeDateString(string(val))
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.DateOnly)
	case *time.Time:
		if val == nil {
			return ""
		}
		return ISODate(*val)
	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return val.Time.Format(time.DateOnly)
	case pgtype.Timestamptz:
		if !val.Valid {
			return ""
		}
		return val.Time.Format(time.DateOnly)
	case pgtype.Timestamp:
		if !val.Valid {
			return ""
		}
		return val.Time.Format(time.DateOnly)
	default:
		return ""
	}
}

// ISODateTime приводит хранимое значение к строке ISO-8601 в UTC
func ISODateTime(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeDateTimeString(val)
	case []byte:
		return normalizeDateTimeString(string(val))
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return FormatDateTime(val)
	case *time.Time:
		if val == nil {
			return ""
		}
		return ISODateTime(*val)
	case pgtype.Timestamptz:
		if !val.Valid {
			return ""
		}
		return FormatDateTime(val.Time)
	case pgtype.Timestamp:
		if !val.Valid {
			return ""
		}
		return FormatDateTime(val.Time)
	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return FormatDateTime(val.Time)
	default:
		return ""
	}
}

func FormatDateTime(t time.Time) string {
	return t.UTC().Format(ISODateTimeLayout)
}

func normalizeDateString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return s
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return s
}

func normalizeDateTimeString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FormatDateTime(t)
		}
	}
	return s
}
