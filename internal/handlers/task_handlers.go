package handlers

import (
	"net/http"
	"time"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	"taskboard/internal/validation"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "task-tracker"

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

// Routes монтирует CRUD-маршруты задач
func (s *TaskHandler) Routes(r chi.Router) {
	r.Get("/", s.ListTasks) // GET /tasks
	r.Post("/", s.PostTask) // POST /tasks
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.GetTaskByID)       // GET /tasks/{id}
		r.Put("/", s.UpdateTaskByID)    // PUT /tasks/{id}
		r.Delete("/", s.DeleteTaskByID) // DELETE /tasks/{id}
	})
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	status := task.ParseFilter(r.URL.Query().Get("status"))

	tasks, err := s.TaskService.ListTasks(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.String("status_filter", string(status)),
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("id", chi.URLParam(r, "id")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusNotFound, msgNotFound)
		return
	}

	t, err := s.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", t.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTask(t))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, msgContentType)
		return
	}

	var request dto.CreateTaskRequest
	if err := decodeBody(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	input, err := validation.Create(request.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), input.TitleValue(), input.DescriptionValue(), input.StatusValue())
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, dto.FromTask(created))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("id", chi.URLParam(r, "id")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusNotFound, msgNotFound)
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, msgContentType)
		return
	}

	var request dto.UpdateTaskRequest
	if err := decodeBody(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	input, err := validation.Update(request.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, input.Options()...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTask(updated))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("id", chi.URLParam(r, "id")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusNotFound, msgNotFound)
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.DeleteResponse{ID: id})
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис недоступен", err)
		responseWithData(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Service: serviceName})
		return
	}
	responseWithData(w, http.StatusOK, dto.HealthResponse{Status: "ok", Service: serviceName})
}
