package dto

import (
	"time"

	"taskboard/internal/models/task"
	"taskboard/internal/validation"

	"github.com/google/uuid"
)

// поля-указатели отличают "не передано" от пустой строки
type CreateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r CreateTaskRequest) Input() validation.TaskInput {
	return validation.TaskInput{Title: r.Title, Description: r.Description, Status: r.Status}
}

func (r UpdateTaskRequest) Input() validation.TaskInput {
	return validation.TaskInput{Title: r.Title, Description: r.Description, Status: r.Status}
}

type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type DeleteResponse struct {
	ID uuid.UUID `json:"id"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.UUID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromTaskList никогда не возвращает nil, пустой список сериализуется в []
func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}
