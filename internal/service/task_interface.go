package service

import (
	"context"

	"taskboard/internal/models/task"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	List(context.Context, task.Status) ([]*task.Task, error)
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	Create(context.Context, *task.Task) error
	Update(context.Context, uuid.UUID, task.Patch) (*task.Task, error)
	Delete(context.Context, uuid.UUID) error
}
