package handlers

import (
	"context"

	"taskboard/internal/models/task"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(context.Context) error
	ListTasks(context.Context, task.Status) ([]*task.Task, error)
	GetTaskByID(context.Context, uuid.UUID) (*task.Task, error)
	CreateTask(ctx context.Context, title, description string, status task.Status) (*task.Task, error)
	UpdateTask(context.Context, uuid.UUID, ...task.TaskOption) (*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
}
