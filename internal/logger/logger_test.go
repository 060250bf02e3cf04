package logger_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"taskboard/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger_Helpers проверяет, что обёртки пишут поля в zap
func TestLogger_Helpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core)
	defer func() { logger.Logger = prev }()

	logger.Info("info", zap.String("k", "v"))
	logger.Warn("warn")
	logger.Error("error", errors.New("boom"))
	logger.Log(zapcore.ErrorLevel, "log")

	req := httptest.NewRequest("GET", "/tasks?status=All", nil)
	logger.HttpRequestInfo(req, "http")

	require.Equal(t, 5, logs.Len())
	entries := logs.All()
	assert.Equal(t, "v", entries[0].ContextMap()["k"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
	assert.Equal(t, "/tasks", entries[4].ContextMap()["path"])
	assert.Equal(t, "status=All", entries[4].ContextMap()["query"])
}

func TestLogger_Init(t *testing.T) {
	prev := logger.Logger
	defer func() { logger.Logger = prev }()

	require.NoError(t, logger.Init(true))
	require.NoError(t, logger.Init(false))
	assert.NotNil(t, logger.Logger)
}
