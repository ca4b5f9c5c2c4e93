package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodePersistenceError = "PERSISTENCE_ERROR"
	CodeMigrationError   = "MIGRATION_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource, id string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
		Err: err,
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

// NewPersistenceError - сбой хранилища при операции operation
func NewPersistenceError(operation string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodePersistenceError,
		Message: fmt.Sprintf("операция %s не выполнена", operation),
		Details: map[string]any{
			"operation": operation,
		},
		Err: err,
	}
}

func NewMigrationError(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeMigrationError,
		Message: "перенос данных не выполнен",
		Details: map[string]any{},
		Err:     err,
	}
}

// IsPersistenceError сообщает, что ошибка пришла из хранилища (включая "не найдено")
func IsPersistenceError(err error) bool {
	var busErr *BusinessError
	if !errors.As(err, &busErr) {
		return false
	}
	return busErr.Code == CodePersistenceError || busErr.Code == CodeNotFound
}

func IsNotFound(err error) bool {
	var busErr *BusinessError
	return errors.As(err, &busErr) && busErr.Code == CodeNotFound
}
