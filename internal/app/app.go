package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/repository/task/inmemory"
	"taskboard/internal/repository/task/mongodb"
	"taskboard/internal/repository/task/postgres"
	"taskboard/internal/repository/task/sqlite"
	"taskboard/internal/service"
	"taskboard/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "task-tracker"

type shutdownFunc struct {
	name string
	fn   func(context.Context) error
}

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository // интерфейс!
	service    *service.TaskService
	shutdowns  []shutdownFunc // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]shutdownFunc, 0),
	}
}

// Init поднимает логгер, хранилище, сервис и HTTP-сервер
func (a *App) Init(ctx context.Context) (*App, error) {
	if _, err := a.InitService(ctx); err != nil {
		return nil, err
	}

	a.router = a.newRouter()
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.onShutdown("http", func(ctx context.Context) error {
		logger.Info("HTTP: Остановка сервера")
		return a.server.Shutdown(ctx)
	})

	return a, nil
}

// InitService всё, кроме HTTP: так работает mcp поверх stdio
func (a *App) InitService(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.onShutdown("logger", func(context.Context) error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	if err := a.initRepository(ctx); err != nil {
		return nil, err
	}
	a.service = service.NewTaskService(a.repository)
	return a, nil
}

func (a *App) initRepository(ctx context.Context) error {
	cfg := a.config
	logger.Info("Repository: Выбор хранилища", zap.String("type", cfg.Repository.Type))

	switch cfg.Repository.Type {
	case config.RepoPostgres:
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			return fmt.Errorf("миграции postgres: %w", err)
		}
		storage, err := postgres.New(ctx, cfg.Database.URL, postgres.PoolConfig{
			MaxConns:    int32(cfg.Database.MaxConnections),
			MinConns:    int32(cfg.Database.MinConnections),
			IdleTimeout: cfg.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		a.repository = storage
		a.onShutdown("postgres", func(context.Context) error {
			storage.Close()
			return nil
		})

	case config.RepoMongo:
		storage, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return fmt.Errorf("подключение к mongo: %w", err)
		}
		a.repository = storage
		a.onShutdown("mongo", storage.Close)

	case config.RepoSQLite:
		storage, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return fmt.Errorf("открытие sqlite: %w", err)
		}
		a.repository = storage
		a.onShutdown("sqlite", func(context.Context) error {
			return storage.Close()
		})

	default:
		a.repository = inmemory.NewTaskStorage()
	}
	return nil
}

func (a *App) newRouter() *chi.Mux {
	cfg := a.config.Server
	taskHandler := handlers.NewTaskHandler(a.service)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/tasks", taskHandler.Routes)
	r.Get("/health", taskHandler.HealthCheck)
	r.Handle("/*", web.Handler(cfg.StaticDir))

	return r
}

func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) Service() *service.TaskService {
	return a.service
}

// Run блокируется до остановки сервера
func (a *App) Run() error {
	logger.Info("Server started",
		zap.String("addr", a.server.Addr),
		zap.String("repository", a.config.Repository.Type))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("запуск HTTP-сервера: %w", err)
	}
	return nil
}

// Shutdown сначала сервер, затем хранилище, логгер последним
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		s := a.shutdowns[i]
		if err := s.fn(ctx); err != nil {
			logger.Error("Ошибка при остановке", err, zap.String("component", s.name))
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	a.shutdowns = nil
	return errors.Join(errs...)
}

func (a *App) onShutdown(name string, fn func(context.Context) error) {
	a.shutdowns = append(a.shutdowns, shutdownFunc{name: name, fn: fn})
}
