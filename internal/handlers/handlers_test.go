package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/handlers"
	"taskboard/internal/handlers/dto"
	"taskboard/internal/models/task"
	"taskboard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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

func (m *MockTaskService) ListTasks(ctx context.Context, status task.Status) ([]*task.Task, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, title, description string, status task.Status) (*task.Task, error) {
	args := m.Called(ctx, title, description, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	args := m.Called(ctx, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ handlers.TaskService = (*MockTaskService)(nil)

// withID симуляция параметра пути chi
func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func sampleTask(id uuid.UUID, title string, status task.Status) *task.Task {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &task.Task{UUID: id, Title: title, Status: status, CreatedAt: now, UpdatedAt: now}
}

// TestTaskHandler_HealthCheck тестирует HealthCheck
func TestTaskHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("service unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			handler.HealthCheck(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "task-tracker")

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_ListTasks тестирует список и фильтр
func TestTaskHandler_ListTasks(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedFilter task.Status
		result         []*task.Task
	}{
		{name: "no filter", query: "", expectedFilter: "", result: []*task.Task{sampleTask(uuid.New(), "A", task.StatusPending)}},
		{name: "All means no filter", query: "?status=All", expectedFilter: ""},
		{name: "completed", query: "?status=Completed", expectedFilter: task.StatusCompleted},
		{name: "in progress with space", query: "?status=In%20Progress", expectedFilter: task.StatusInProgress},
		{name: "unknown value passed literally", query: "?status=Archived", expectedFilter: task.Status("Archived")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			result := tt.result
			if result == nil {
				result = []*task.Task{}
			}
			mockService.On("ListTasks", mock.Anything, tt.expectedFilter).Return(result, nil)

			req := httptest.NewRequest(http.MethodGet, "/tasks"+tt.query, nil)
			w := httptest.NewRecorder()
			handlers.NewTaskHandler(mockService).ListTasks(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body []dto.TaskResponse
			require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&body))
			assert.Len(t, body, len(result))
			if len(result) == 0 {
				assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
			}
			mockService.AssertExpectations(t)
		})
	}

	t.Run("service failure", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("ListTasks", mock.Anything, task.Status("")).Return(nil, errors.New("db down"))

		w := httptest.NewRecorder()
		handlers.NewTaskHandler(mockService).ListTasks(w, httptest.NewRequest(http.MethodGet, "/tasks", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decodeError(t, w).Message)
	})
}

// TestTaskHandler_PostTask тестирует создание задачи
func TestTaskHandler_PostTask(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
		expectedErrors []string
	}{
		{
			name:        "success - create task",
			requestBody: `{"title": "  Buy milk ", "description": "2 liters"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, "Buy milk", "2 liters", task.Status("")).
					Return(sampleTask(taskID, "Buy milk", task.StatusPending), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "success - charset in content type",
			requestBody: `{"title": "Buy milk", "status": "In Progress"}`,
			contentType: "application/json; charset=utf-8",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, "Buy milk", "", task.StatusInProgress).
					Return(sampleTask(taskID, "Buy milk", task.StatusInProgress), nil)
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
			name:           "error - missing title",
			requestBody:    `{"description": "Test Description"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
			expectedErrors: []string{"Title is required"},
		},
		{
			name:           "error - empty title",
			requestBody:    `{"title": ""}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
			expectedErrors: []string{"Title is required"},
		},
		{
			name:           "error - bad status",
			requestBody:    `{"title": "x", "status": "Done"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
			expectedErrors: []string{"Status must be Pending, In Progress, or Completed"},
		},
		{
			name:        "error - service error",
			requestBody: `{"title": "Test Task"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, "Test Task", "", task.Status("")).
					Return(nil, errors.New("service error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService)

			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			handler.PostTask(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response dto.TaskResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, taskID, response.ID)
				assert.Equal(t, "Buy milk", response.Title)
			}
			if tt.expectedErrors != nil {
				resp := decodeError(t, w)
				assert.Equal(t, tt.expectedErrors, resp.Errors)
				assert.Equal(t, strings.Join(tt.expectedErrors, "; "), resp.Message)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_GetTaskByID тестирует получение задачи по ID
func TestTaskHandler_GetTaskByID(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		taskID         string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:   "success - get task",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTaskByID", mock.Anything, taskID).
					Return(sampleTask(taskID, "Test Task", task.StatusPending), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - malformed id is not found",
			taskID:         "invalid-uuid",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "error - task not found",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTaskByID", mock.Anything, taskID).
					Return(nil, service.NewNotFound("Task", taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "error - service error",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTaskByID", mock.Anything, taskID).
					Return(nil, errors.New("internal error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService)

			req := withID(httptest.NewRequest(http.MethodGet, "/tasks/"+tt.taskID, nil), tt.taskID)
			w := httptest.NewRecorder()

			handler.GetTaskByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			switch tt.expectedStatus {
			case http.StatusOK:
				var response dto.TaskResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, taskID, response.ID)
				assert.Equal(t, "Test Task", response.Title)
			case http.StatusNotFound:
				assert.Equal(t, "Task not found", decodeError(t, w).Message)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_UpdateTaskByID тестирует обновление задачи
func TestTaskHandler_UpdateTaskByID(t *testing.T) {
	taskID := uuid.New()

	onlyStatus := mock.MatchedBy(func(opts []task.TaskOption) bool {
		p := task.NewPatch(opts...)
		return p.Title == nil && p.Description == nil && p.Status != nil && *p.Status == task.StatusCompleted
	})

	tests := []struct {
		name           string
		taskID         string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:        "success - partial update",
			taskID:      taskID.String(),
			requestBody: `{"status": "Completed"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("UpdateTask", mock.Anything, taskID, onlyStatus).
					Return(sampleTask(taskID, "Updated Title", task.StatusCompleted), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - invalid content type",
			taskID:         taskID.String(),
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - malformed id",
			taskID:         "invalid-uuid",
			requestBody:    `{}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "error - invalid JSON",
			taskID:         taskID.String(),
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - blank title",
			taskID:         taskID.String(),
			requestBody:    `{"title": "   "}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - not found",
			taskID:      taskID.String(),
			requestBody: `{"title": "Updated Title"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("UpdateTask", mock.Anything, taskID, mock.Anything).
					Return(nil, service.NewNotFound("Task", taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService)

			req := withID(httptest.NewRequest(http.MethodPut, "/tasks/"+tt.taskID, bytes.NewBufferString(tt.requestBody)), tt.taskID)
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			handler.UpdateTaskByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response dto.TaskResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, "Completed", response.Status)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_DeleteTaskByID тестирует удаление задачи
func TestTaskHandler_DeleteTaskByID(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		taskID         string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:   "success - delete task",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, taskID).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - malformed id",
			taskID:         "invalid-uuid",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "error - not found",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, taskID).
					Return(service.NewNotFound("Task", taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "error - service error",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, taskID).
					Return(errors.New("internal error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService)

			req := withID(httptest.NewRequest(http.MethodDelete, "/tasks/"+tt.taskID, nil), tt.taskID)
			w := httptest.NewRecorder()

			handler.DeleteTaskByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var response dto.DeleteResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, taskID, response.ID)
			}
			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_Routes проверяет монтирование маршрутов на chi
func TestTaskHandler_Routes(t *testing.T) {
	taskID := uuid.New()
	mockService := new(MockTaskService)
	mockService.On("GetTaskByID", mock.Anything, taskID).Return(sampleTask(taskID, "Routed", task.StatusPending), nil)

	r := chi.NewRouter()
	r.Route("/tasks", handlers.NewTaskHandler(mockService).Routes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/"+taskID.String(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Routed")
	mockService.AssertExpectations(t)
}
