package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, config.RepoInMemory, cfg.Repository.Type)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 100, cfg.Server.RateLimitRPM)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "tasks", cfg.Mongo.Collection)
	assert.Equal(t, ":5000", cfg.GetServerAddr())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: "8080"
  request_timeout: 5s
  rate_limit_rpm: 0
repository:
  type: sqlite
sqlite:
  path: /tmp/tasks.db
logging:
  development: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.GetServerAddr())
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 0, cfg.Server.RateLimitRPM)
	assert.Equal(t, config.RepoSQLite, cfg.Repository.Type)
	assert.Equal(t, "/tmp/tasks.db", cfg.SQLite.Path)
	assert.True(t, cfg.Logging.Development)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "repository:\n  type: inmemory\n")
	t.Setenv("TASKTRACKER_REPOSITORY_TYPE", "mongo")
	t.Setenv("TASKTRACKER_MONGO_DATABASE", "from-env")
	t.Setenv("PORT", "9999")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.RepoMongo, cfg.Repository.Type)
	assert.Equal(t, "from-env", cfg.Mongo.Database)
	assert.Equal(t, "9999", cfg.Server.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Config{
		Server:     config.ServerConfig{Port: "5000"},
		Repository: config.RepositoryConfig{Type: "redis"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")

	cfg.Repository.Type = config.RepoPostgres
	assert.Error(t, cfg.Validate())

	cfg.Database.URL = "postgres://localhost/tasks"
	assert.NoError(t, cfg.Validate())
}
