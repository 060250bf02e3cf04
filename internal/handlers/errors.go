package handlers

import (
	"errors"
	"net/http"

	"taskboard/internal/logger"
	"taskboard/internal/service"

	"go.uber.org/zap"
)

const (
	msgInternal    = "Internal server error"
	msgNotFound    = "Task not found"
	msgBadBody     = "Invalid request body"
	msgContentType = "Content-Type must be application/json"
)

// writeError единственное место, где ошибка превращается в HTTP-ответ
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("error_code", businessErr.Code),
			zap.String("message", businessErr.Message),
			zap.Int("http_status", statusCode))

		payload := []Payload{toPayload("message", businessErr.Message)}
		if businessErr.Code == service.CodeValidation {
			payload = append(payload, toPayload("errors", businessErr.Messages()))
		}
		responseWithJSON(w, statusCode, payload...)
		return
	}

	logger.Error("HTTP: Внутренняя ошибка", err,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	responseWithError(w, http.StatusInternalServerError, msgInternal)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
