package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/models/task"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// APIError ответ сервера с кодом не из 2xx
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	return e.Message
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// TaskFields тело запроса, nil = поле не передаётся
type TaskFields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// List пустой статус или "All" возвращает все задачи
func (c *Client) List(ctx context.Context, status string) ([]dto.TaskResponse, error) {
	path := "/tasks"
	if f := task.ParseFilter(status); f != "" {
		path += "?status=" + url.QueryEscape(string(f))
	}
	var tasks []dto.TaskResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []dto.TaskResponse{}
	}
	return tasks, nil
}

func (c *Client) Get(ctx context.Context, id string) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Create(ctx context.Context, fields TaskFields) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", fields, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Update(ctx context.Context, id string, fields TaskFields) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), fields, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Delete(ctx context.Context, id string) (uuid.UUID, error) {
	var resp dto.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("кодирование запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("разбор ответа: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body dto.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Errors = body.Errors
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	if text := strings.TrimSpace(string(raw)); text != "" {
		apiErr.Message += ": " + text
	}
	return apiErr
}

func String(s string) *string {
	return &s
}
