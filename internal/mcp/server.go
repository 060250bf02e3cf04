package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	"taskboard/internal/service"
	"taskboard/internal/validation"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "task-tracker"
	serverVersion = "1.0.0"

	msgNotFound = "Task not found"
	msgInternal = "Internal server error"
)

type TaskService interface {
	ListTasks(context.Context, task.Status) ([]*task.Task, error)
	GetTaskByID(context.Context, uuid.UUID) (*task.Task, error)
	CreateTask(ctx context.Context, title, description string, status task.Status) (*task.Task, error)
	UpdateTask(context.Context, uuid.UUID, ...task.TaskOption) (*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
}

// NewServer набор инструментов поверх того же сервиса, что и REST API
func NewServer(svc TaskService) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion)

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, newest first."),
		mcp.WithString("status", mcp.Description("Filter by status: All, Pending, In Progress or Completed")),
	), listTasksHandler(svc))

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task by id."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), getTaskHandler(svc))

	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task."),
		mcp.WithString("title", mcp.Description("Task title (max 100 chars)"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description (max 500 chars)")),
		mcp.WithString("status", mcp.Description("Pending, In Progress or Completed (defaults to Pending)")),
	), createTaskHandler(svc))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update an existing task. Only the fields passed are changed."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("status", mcp.Description("New status")),
	), updateTaskHandler(svc))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(svc))

	return s
}

// Serve держит stdio до закрытия входа
func Serve(svc TaskService) error {
	logger.Info("MCP: Запуск сервера на stdio")
	return server.ServeStdio(NewServer(svc))
}

func listTasksHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := task.ParseFilter(mcp.ParseString(request, "status", ""))

		tasks, err := svc.ListTasks(ctx, status)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(dto.FromTaskList(tasks))
	}
}

func getTaskHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := uuid.Parse(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(msgNotFound), nil
		}

		t, err := svc.GetTaskByID(ctx, id)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(dto.FromTask(t))
	}
}

func createTaskHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := validation.Create(inputFrom(request))
		if err != nil {
			return toolError(err), nil
		}

		created, err := svc.CreateTask(ctx, input.TitleValue(), input.DescriptionValue(), input.StatusValue())
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(dto.FromTask(created))
	}
}

func updateTaskHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := uuid.Parse(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(msgNotFound), nil
		}

		input, err := validation.Update(inputFrom(request))
		if err != nil {
			return toolError(err), nil
		}

		updated, err := svc.UpdateTask(ctx, id, input.Options()...)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(dto.FromTask(updated))
	}
}

func deleteTaskHandler(svc TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := uuid.Parse(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(msgNotFound), nil
		}

		if err := svc.DeleteTask(ctx, id); err != nil {
			return toolError(err), nil
		}
		return jsonResult(dto.DeleteResponse{ID: id})
	}
}

// inputFrom отличает непереданное поле от пустой строки
func inputFrom(request mcp.CallToolRequest) validation.TaskInput {
	args, _ := request.Params.Arguments.(map[string]any)

	var in validation.TaskInput
	if v, ok := args["title"].(string); ok {
		in.Title = validation.Ptr(v)
	}
	if v, ok := args["description"].(string); ok {
		in.Description = validation.Ptr(v)
	}
	if v, ok := args["status"].(string); ok {
		in.Status = validation.Ptr(v)
	}
	return in
}

// toolError тексты совпадают с ответами REST API
func toolError(err error) *mcp.CallToolResult {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		return mcp.NewToolResultError(businessErr.Message)
	}

	logger.Error("MCP: внутренняя ошибка", err)
	return mcp.NewToolResultError(msgInternal)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
