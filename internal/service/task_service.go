package service

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	rep "taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

const resourceTask = "Task"

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// ListTasks пустой статус означает все задачи
func (s *TaskService) ListTasks(ctx context.Context, status task.Status) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "получение задачи")
	}
	return t, nil
}

func (s *TaskService) CreateTask(ctx context.Context, title, description string, status task.Status) (*task.Task, error) {
	if status == "" {
		status = task.StatusPending
	}
	if !status.Valid() {
		return nil, NewValidationError("Status must be Pending, In Progress, or Completed")
	}

	newTask := &task.Task{
		Title:       title,
		Description: description,
		Status:      status,
	}
	if err := s.repo.Create(ctx, newTask); err != nil {
		if errors.Is(err, rep.ErrTitleRequired) {
			return nil, NewValidationError("Title is required")
		}
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.String("task_id", newTask.UUID.String()))
	return newTask, nil
}

// UpdateTask частичное обновление: меняются только переданные поля
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, s.mapRepoError(err, id, "получение задачи")
	}

	patch := task.NewPatch(options...)
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, NewValidationError("Status must be Pending, In Progress, or Completed")
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, NewValidationError("Title is required")
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.mapRepoError(err, id, "обновление задачи")
	}

	logger.Info("Service: Задача обновлена", zap.String("task_id", id.String()))
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.mapRepoError(err, id, "получение задачи")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "удаление задачи")
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) mapRepoError(err error, id uuid.UUID, action string) error {
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		return NewNotFound(resourceTask, id.String())
	}
	return fmt.Errorf("%s: %w", action, err)
}
