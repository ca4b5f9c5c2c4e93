package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskMaster/internal/handlers/dto"
	"taskMaster/internal/logger"
	"taskMaster/internal/models/task"
	"taskMaster/internal/notify"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService   Service
	Notifications NotificationSource
}

func NewTaskHandler(taskService Service, notifications NotificationSource) *TaskHandler {
	return &TaskHandler{
		TaskService:   taskService,
		Notifications: notifications,
	}
}

// Routes собирает маршруты API задач
func (h *TaskHandler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.GetTasks)  // GET /tasks
		r.Post("/", h.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateTaskByID)       // PUT /tasks/{id}
			r.Delete("/", h.DeleteTaskByID)    // DELETE /tasks/{id}
			r.Post("/status", h.SetTaskStatus) // POST /tasks/{id}/status
		})
	})

	r.Post("/admin/migrate", h.Migrate)
	r.Get("/notifications", h.GetNotifications)
	r.Get("/health", h.HealthCheck)
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	values := r.URL.Query()
	filter, err := ParseFilter(values)
	if err != nil {
		handleValidationError(w, r, err)
		return
	}

	sort, err := ParseSort(values)
	if err != nil {
		handleValidationError(w, r, err)
		return
	}

	tasks, err := h.TaskService.View(r.Context(), filter, sort)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "view_tasks"))
		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.NewViewResponse(tasks, filter, sort))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	draft := request.ToDraft()
	if err := draft.Validate(); err != nil {
		handleValidationError(w, r, err)
		return
	}

	id, err := h.TaskService.CreateTask(r.Context(), draft)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.String("client_ip", r.RemoteAddr),
			zap.Duration("ms", time.Since(start)))

		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("id", id))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if err := validateID(id); err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.UpdateTaskRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	options := request.Options()
	if err := task.NewPatch(options...).Validate(); err != nil {
		handleValidationError(w, r, err)
		return
	}

	if err := h.TaskService.UpdateTask(r.Context(), id, options...); err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "update_task"),
			zap.String("task_id", id))

		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("id", id))
}

func (h *TaskHandler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if err := validateID(id); err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var request dto.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if !request.Status.Valid() {
		handleValidationError(w, r, &task.ValidationError{Field: "status", Reason: "неизвестный статус"})
		return
	}

	if err := h.TaskService.SetStatus(r.Context(), id, request.Status); err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "set_status"),
			zap.String("task_id", id))

		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Статус обновлён",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("id", id), toPayload("status", request.Status))
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if err := validateID(id); err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), id); err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "delete_task"),
			zap.String("task_id", id))

		handleServiceError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	res, err := h.TaskService.Migrate(r.Context())
	if err != nil {
		logger.Error("HTTP: ошибка в Service", err, zap.String("operation", "migrate"))
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MigrateResponse{
		State:    res.State,
		Inserted: res.Inserted,
		Skipped:  res.Skipped,
	})
}

func (h *TaskHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	items := []notify.Notification{}
	if h.Notifications != nil {
		items = h.Notifications.Recent()
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", "task-master"),
			toPayload("error", err.Error()))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "task-master"),
		toPayload("time", time.Now().UTC().Format(time.RFC3339)))
}
