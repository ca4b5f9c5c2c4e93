package service

import (
	"taskMaster/internal/notify"
)

type Option func(*TaskService)

// WithMigrator запускает перенос данных перед первой загрузкой списка
func WithMigrator(m Migrator) Option {
	return func(s *TaskService) {
		s.migrator = m
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *TaskService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLocale задаёт локаль сравнения строк при сортировке
func WithLocale(locale string) Option {
	return func(s *TaskService) {
		s.locale = locale
	}
}
