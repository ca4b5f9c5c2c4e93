package handlers

import (
	"errors"
	"net/http"

	"taskMaster/internal/logger"
	"taskMaster/internal/models/task"
	"taskMaster/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

// handleServiceError отвечает на любую ошибку сервиса
func handleServiceError(w http.ResponseWriter, err error) {
	if handleBusinessError(w, err) {
		return
	}
	responseWithError(w, http.StatusInternalServerError, err.Error())
}

// handleValidationError переводит ошибку формы в VALIDATION_ERROR
func handleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *task.ValidationError
	if errors.As(err, &validationErr) {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", validationErr.Field),
			zap.String("error", validationErr.Reason),
			zap.String("client_ip", r.RemoteAddr))
		handleBusinessError(w, service.NewValidationError(validationErr.Field, validationErr.Reason))
		return
	}
	responseWithError(w, http.StatusBadRequest, err.Error())
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodePersistenceError:
		return http.StatusInternalServerError
	case service.CodeMigrationError:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
