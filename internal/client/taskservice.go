package client

import (
	"context"
	"net/url"
	"time"

	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService отдаёт коллекцию задач, стараясь не ходить в сеть
// лишний раз. Кэш содержит только подтверждённое сервером состояние;
// записи при мутациях - удобство, а не источник истины.
type TaskService struct {
	client *Client
	cache  *taskCache
}

func NewTaskService(client *Client, ttl time.Duration) *TaskService {
	return &TaskService{
		client: client,
		cache:  newTaskCache(ttl),
	}
}

// GetTasks возвращает список задач. Без forceRefresh живой кэш
// обслуживает чтение без сетевого вызова. При ошибке сети старый
// кэш (даже протухший) возвращается вместо ошибки.
func (s *TaskService) GetTasks(ctx context.Context, forceRefresh bool) ([]*task.Task, error) {
	if !forceRefresh {
		if tasks, ok := s.cache.get(); ok {
			return tasks, nil
		}
	}

	fetchGen := s.cache.beginFetch()

	var tasks []*task.Task
	if err := s.client.Get(ctx, "/tasks", nil, &tasks); err != nil {
		if stale, ok := s.cache.snapshot(); ok {
			logger.Warn("TaskService: Бэкенд недоступен, возвращаем устаревший кэш",
				zap.Error(err),
				zap.Int("cached", len(stale)))
			return stale, nil
		}
		return nil, err
	}

	if !s.cache.put(tasks, fetchGen) {
		logger.Warn("TaskService: Кэш изменился во время выборки, результат не записан")
	}
	return tasks, nil
}

// GetTask отдаёт задачу из валидного кэша, иначе запрашивает её
// с сервера. Кэш хранит только полные коллекции, поэтому одиночная
// выборка в него не пишет.
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	if cached, ok := s.cache.findByID(id); ok {
		return cached, nil
	}

	var t task.Task
	if err := s.client.Get(ctx, "/tasks/"+id.String(), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask отправляет данные на сервер; валидация - забота
// вызывающего. Созданная задача добавляется в начало кэша.
func (s *TaskService) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*task.Task, error) {
	var created task.Task
	if err := s.client.Post(ctx, "/tasks", req, &created); err != nil {
		return nil, err
	}

	s.cache.add(&created)
	return &created, nil
}

// UpdateTask отправляет частичное обновление; подтверждённая сервером
// версия заменяет запись в кэше, порядок коллекции сохраняется
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req dto.UpdateTaskRequest) (*task.Task, error) {
	var updated task.Task
	if err := s.client.Put(ctx, "/tasks/"+id.String(), req, &updated); err != nil {
		return nil, err
	}

	s.cache.replace(&updated)
	return &updated, nil
}

// DeleteTask - мягкое удаление на сервере; из кэша задача убирается
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) (*dto.DeleteTaskResponse, error) {
	var ack dto.DeleteTaskResponse
	if err := s.client.Delete(ctx, "/tasks/"+id.String(), &ack); err != nil {
		return nil, err
	}

	s.cache.remove(id)
	return &ack, nil
}

// FilterTasks - выборка с фильтром и сортировкой, кэш не участвует
func (s *TaskService) FilterTasks(ctx context.Context, status *task.Status, sortBy, sortOrder string) ([]*task.Task, error) {
	query := url.Values{}
	if status != nil {
		query.Set("status", string(*status))
	}
	if sortBy != "" {
		query.Set("sort_by", sortBy)
	}
	if sortOrder != "" {
		query.Set("sort_order", sortOrder)
	}

	var tasks []*task.Task
	if err := s.client.Get(ctx, "/api/tasks/filter", query, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// RefreshCache сбрасывает кэш и принудительно перечитывает список
func (s *TaskService) RefreshCache(ctx context.Context) ([]*task.Task, error) {
	s.cache.invalidate()
	return s.GetTasks(ctx, true)
}

// ClearCache сбрасывает кэш без перечитывания
func (s *TaskService) ClearCache() {
	s.cache.invalidate()
}
