package service

import (
	"fmt"
	"strings"
)

const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

// NewNotFound сообщение уходит клиенту как есть, поэтому на английском
func NewNotFound(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewValidationError собирает все сообщения валидации в одну ошибку
func NewValidationError(messages ...string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: strings.Join(messages, "; "),
		Details: map[string]any{
			"errors": messages,
		},
	}
}

// Messages список сообщений валидации, для остальных ошибок само сообщение
func (b *BusinessError) Messages() []string {
	if msgs, ok := b.Details["errors"].([]string); ok {
		return msgs
	}
	return []string{b.Message}
}
