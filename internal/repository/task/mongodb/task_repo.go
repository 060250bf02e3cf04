package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	repo "taskboard/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

// taskDocument документ коллекции tasks, _id хранит uuid строкой
type taskDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d *taskDocument) toTask() (*task.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("неверный _id %q: %w", d.ID, err)
	}
	return &task.Task{
		UUID:        id,
		Title:       d.Title,
		Description: d.Description,
		Status:      task.Status(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

type Storage struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func New(ctx context.Context, uri, database, collection string) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("Repository: Ошибка подключения к MongoDB", err)
		return nil, fmt.Errorf("подключение к mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное подключение к MongoDB",
		zap.String("database", database),
		zap.String("collection", collection))

	return &Storage{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	logger.Info("Repository: Закрытие соединения MongoDB")
	return s.client.Disconnect(ctx)
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
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

	doc := taskDocument{
		ID:          taskToCreate.UUID.String(),
		Title:       taskToCreate.Title,
		Description: taskToCreate.Description,
		Status:      string(taskToCreate.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now
	return nil
}

// Update выполняется одним FindOneAndUpdate с конвейером: updatedAt
// вычисляется на сервере и всегда строго больше прежних меток.
func (s *Storage) Update(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("update", start)

	set := bson.D{}
	// $literal не даёт интерпретировать "$..." в пользовательском тексте как путь
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: bson.D{{Key: "$literal", Value: *patch.Title}}})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: bson.D{{Key: "$literal", Value: *patch.Description}}})
	}
	if patch.Status != nil {
		set = append(set, bson.E{Key: "status", Value: bson.D{{Key: "$literal", Value: string(*patch.Status)}}})
	}
	step := task.Precision.Milliseconds()
	set = append(set, bson.E{Key: "updatedAt", Value: bson.D{{Key: "$max", Value: bson.A{
		task.Now(),
		bson.D{{Key: "$add", Value: bson.A{"$createdAt", step}}},
		bson.D{{Key: "$add", Value: bson.A{"$updatedAt", step}}},
	}}}})

	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, pipeline, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return doc.toTask()
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get", start)

	var doc taskDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return doc.toTask()
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("delete", start)

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) List(ctx context.Context, status task.Status) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("list", start)

	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("чтение курсора: %w", err)
	}

	tasks := make([]*task.Task, 0, len(docs))
	for i := range docs {
		t, err := docs[i].toTask()
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
