package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskMaster/internal/handlers"
	"taskMaster/internal/handlers/dto"
	"taskMaster/internal/migrator"
	"taskMaster/internal/models/task"
	"taskMaster/internal/notify"
	"taskMaster/internal/query"
	"taskMaster/internal/repository"
	"taskMaster/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskService - мок сервиса
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) View(ctx context.Context, f query.Filter, s query.Sort) ([]task.Task, error) {
	args := m.Called(ctx, f, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, draft task.Draft) (string, error) {
	args := m.Called(ctx, draft)
	return args.String(0), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id string, options ...task.PatchOption) error {
	args := m.Called(ctx, id, options)
	return args.Error(0)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) SetStatus(ctx context.Context, id string, status task.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTaskService) Migrate(ctx context.Context) (migrator.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).(migrator.Result), args.Error(1)
}

func newRouter(svc handlers.Service, notifications handlers.NotificationSource) http.Handler {
	r := chi.NewRouter()
	handlers.NewTaskHandler(svc, notifications).Routes(r)
	return r
}

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "2", Date: "2024-07-16", EntityName: "Beta Solutions", TaskType: task.TypeEmail, Time: "14:30", ContactPerson: "Jane Smith", Status: task.StatusOpen},
		{ID: "1", Date: "2024-07-15", EntityName: "Acme Corp", TaskType: task.TypeCall, Time: "10:00", ContactPerson: "John Doe", Status: task.StatusOpen},
	}
}

func TestTaskHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
		expectedState  string
	}{
		{
			name: "success - storage reachable",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedState:  "ok",
		},
		{
			name: "error - storage unavailable",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedState:  "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			newRouter(mockService, nil).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.expectedState, body["status"])
			assert.Equal(t, "task-master", body["service"])
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_GetTasks(t *testing.T) {
	dateFrom := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockTaskService)
		expectedStatus int
		check          func(t *testing.T, res dto.ViewResponse)
	}{
		{
			name: "success - default view",
			url:  "/tasks",
			setupMock: func(m *MockTaskService) {
				m.On("View", mock.Anything, query.DefaultFilter(), query.DefaultSort()).
					Return(sampleTasks(), nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, res dto.ViewResponse) {
				assert.Equal(t, 2, res.Count)
				assert.Equal(t, "2", res.Tasks[0].ID)
				assert.Equal(t, query.FieldDate, res.Sort.Field)
				assert.Equal(t, query.Desc, res.Sort.Direction)
				assert.Equal(t, query.All, res.Filter.Status)
			},
		},
		{
			name: "success - filter and sort",
			url:  "/tasks?entityName=acme&status=open&dateFrom=2024-07-15&sort=entityName",
			setupMock: func(m *MockTaskService) {
				f := query.DefaultFilter()
				f.EntityName = "acme"
				f.Status = task.StatusOpen
				f.DateFrom = dateFrom
				s := query.Sort{Field: query.FieldEntityName, Direction: query.Asc}
				m.On("View", mock.Anything, f, s).Return(sampleTasks()[1:], nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, res dto.ViewResponse) {
				assert.Equal(t, 1, res.Count)
				assert.Equal(t, "open", res.Filter.Status)
				assert.Equal(t, "2024-07-15", res.Filter.DateFrom)
				assert.Equal(t, query.FieldEntityName, res.Sort.Field)
			},
		},
		{
			name: "success - toggle current column flips direction",
			url:  "/tasks?toggle=date",
			setupMock: func(m *MockTaskService) {
				m.On("View", mock.Anything, query.DefaultFilter(), query.Sort{Field: query.FieldDate, Direction: query.Asc}).
					Return([]task.Task{}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, res dto.ViewResponse) {
				assert.Equal(t, query.Asc, res.Sort.Direction)
				assert.Empty(t, res.Tasks)
			},
		},
		{
			name:           "error - unknown status",
			url:            "/tasks?status=pending",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - malformed date",
			url:            "/tasks?dateTo=15.07.2024",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - unknown sort field",
			url:            "/tasks?sort=priority",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error - storage failure",
			url:  "/tasks",
			setupMock: func(m *MockTaskService) {
				m.On("View", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, service.NewPersistenceError("list", errors.New("timeout")))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			newRouter(mockService, nil).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				var res dto.ViewResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
				tt.check(t, res)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_PostTask(t *testing.T) {
	validBody := `{
		"date": "2024-07-15",
		"entityName": "Acme Corp",
		"taskType": "Call",
		"time": "10:00",
		"contactPerson": "John Doe",
		"note": "Initial discussion about new project."
	}`

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:        "success - create task",
			requestBody: validBody,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.MatchedBy(func(d task.Draft) bool {
					return d.EntityName == "Acme Corp" && d.Status == task.StatusOpen
				})).Return("new-id", nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "success - charset in content type",
			requestBody: validBody,
			contentType: "application/json; charset=utf-8",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).Return("new-id", nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - missing entity name",
			requestBody:    `{"date":"2024-07-15","taskType":"Call","time":"10:00","contactPerson":"John Doe"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - time out of range",
			requestBody:    `{"date":"2024-07-15","entityName":"Acme","taskType":"Call","time":"25:00","contactPerson":"John Doe"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - service error",
			requestBody: validBody,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return("", service.NewPersistenceError("create", errors.New("disk full")))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			newRouter(mockService, nil).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, "new-id", response["id"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_UpdateTaskByID(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:        "success - partial update",
			requestBody: `{"entityName":"Acme Corp Ltd","note":""}`,
			setupMock: func(m *MockTaskService) {
				m.On("UpdateTask", mock.Anything, "task-1", mock.MatchedBy(func(opts []task.PatchOption) bool {
					p := task.NewPatch(opts...)
					return p.EntityName != nil && *p.EntityName == "Acme Corp Ltd" &&
						p.Note != nil && *p.Note == "" && p.Date == nil
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - invalid time",
			requestBody:    `{"time":"7pm"}`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - empty status",
			requestBody:    `{"status":""}`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - empty task type",
			requestBody:    `{"taskType":""}`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{"time":`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - task not found",
			requestBody: `{"note":"x"}`,
			setupMock: func(m *MockTaskService) {
				m.On("UpdateTask", mock.Anything, "task-1", mock.Anything).
					Return(service.NewNotFound("задача", "task-1", repository.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPut, "/tasks/task-1", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			newRouter(mockService, nil).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_SetTaskStatus(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:        "success - close task",
			requestBody: `{"status":"closed"}`,
			setupMock: func(m *MockTaskService) {
				m.On("SetStatus", mock.Anything, "task-1", task.StatusClosed).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - unknown status",
			requestBody:    `{"status":"done"}`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - task not found",
			requestBody: `{"status":"open"}`,
			setupMock: func(m *MockTaskService) {
				m.On("SetStatus", mock.Anything, "task-1", task.StatusOpen).
					Return(service.NewNotFound("задача", "task-1", repository.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/tasks/task-1/status", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			newRouter(mockService, nil).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_DeleteTaskByID(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - delete task",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, "task-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "error - service error",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, "task-1").
					Return(service.NewPersistenceError("delete", errors.New("network down")))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodDelete, "/tasks/task-1", nil)
			w := httptest.NewRecorder()
			newRouter(mockService, nil).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_Migrate(t *testing.T) {
	t.Run("success - migrated", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("Migrate", mock.Anything).
			Return(migrator.Result{State: migrator.Migrated, Inserted: 3}, nil)

		req := httptest.NewRequest(http.MethodPost, "/admin/migrate", nil)
		w := httptest.NewRecorder()
		newRouter(mockService, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var res dto.MigrateResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, migrator.Migrated, res.State)
		assert.Equal(t, 3, res.Inserted)
	})

	t.Run("error - migration failed", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("Migrate", mock.Anything).
			Return(migrator.Result{State: migrator.NotMigrated}, service.NewMigrationError(errors.New("batch failed")))

		req := httptest.NewRequest(http.MethodPost, "/admin/migrate", nil)
		w := httptest.NewRecorder()
		newRouter(mockService, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestTaskHandler_GetNotifications(t *testing.T) {
	buf := notify.NewBuffer(10)
	buf.Notify(context.Background(), notify.Notification{Title: "Task Created", Description: "A new task has been successfully created."})
	buf.Notify(context.Background(), notify.Notification{Title: "Task Deleted", Severity: notify.SeverityDestructive})

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	w := httptest.NewRecorder()
	newRouter(new(MockTaskService), buf).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var items []notify.Notification
	require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, "Task Deleted", items[0].Title)

	t.Run("without source", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(new(MockTaskService), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected query.Sort
		wantErr  bool
	}{
		{name: "default", query: "", expected: query.DefaultSort()},
		{name: "new field starts ascending", query: "sort=time", expected: query.Sort{Field: query.FieldTime, Direction: query.Asc}},
		{name: "explicit direction", query: "sort=time&dir=desc", expected: query.Sort{Field: query.FieldTime, Direction: query.Desc}},
		{name: "toggle other field", query: "toggle=status", expected: query.Sort{Field: query.FieldStatus, Direction: query.Asc}},
		{name: "toggle same field", query: "sort=note&dir=asc&toggle=note", expected: query.Sort{Field: query.FieldNote, Direction: query.Desc}},
		{name: "bad direction", query: "dir=up", wantErr: true},
		{name: "bad field", query: "toggle=owner", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks?"+tt.query, nil)
			got, err := handlers.ParseSort(req.URL.Query())
			if tt.wantErr {
				var vErr *task.ValidationError
				assert.ErrorAs(t, err, &vErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
