package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	repo "taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQuery = 100 * time.Millisecond

// taskRecord строка таблицы tasks, метки времени выставляет хранилище
type taskRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:100;not null"`
	Description string    `gorm:"size:500;not null;default:''"`
	Status      string    `gorm:"size:20;not null;default:Pending"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func fromTask(t *task.Task) taskRecord {
	return taskRecord{
		ID:          t.UUID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r *taskRecord) toTask() (*task.Task, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("неверный id %q: %w", r.ID, err)
	}
	return &task.Task{
		UUID:        id,
		Title:       r.Title,
		Description: r.Description,
		Status:      task.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}, nil
}

type Storage struct {
	db *gorm.DB
}

// New открывает файл SQLite (или ":memory:") и создаёт схему
func New(path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("создание каталога БД: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err)
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("получение пула sqlite: %w", err)
	}
	// один писатель; для ":memory:" ещё и единственная копия базы
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("миграция sqlite: %w", err)
	}

	logger.Info("Repository: SQLite готов", zap.String("path", path))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	logger.Info("Repository: Закрытие SQLite")
	return sqlDB.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("получение пула sqlite: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	if taskToCreate.Title == "" {
		return repo.ErrTitleRequired
	}
	start := time.Now()
	defer warnIfSlow("create", start)

	if taskToCreate.UUID == uuid.Nil {
		taskToCreate.UUID = uuid.New()
	}
	if taskToCreate.Status == "" {
		taskToCreate.Status = task.StatusPending
	}
	now := task.Now()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	rec := fromTask(taskToCreate)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("update", start)

	var updated *task.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec taskRecord
		if err := tx.First(&rec, "id = ?", id.String()).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		t, err := rec.toTask()
		if err != nil {
			return err
		}
		patch.Apply(t)
		t.UpdatedAt = task.NextUpdate(t, task.Now())

		rec = fromTask(t)
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return updated, nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get", start)

	var rec taskRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return rec.toTask()
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("delete", start)

	result := s.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id.String())
	if err := result.Error; err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", err)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// rowid разрешает совпадение created_at в пользу более поздней вставки
func (s *Storage) List(ctx context.Context, status task.Status) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("list", start)

	query := s.db.WithContext(ctx).Model(&taskRecord{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var recs []taskRecord
	if err := query.Order("created_at DESC").Order("rowid DESC").Find(&recs).Error; err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	tasks := make([]*task.Task, 0, len(recs))
	for i := range recs {
		t, err := recs[i].toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func warnIfSlow(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}
