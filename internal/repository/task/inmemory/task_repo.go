package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID // порядок вставки, новые в начале
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *TaskStorage) Close() {}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	s.storage[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append([]uuid.UUID{taskToCreate.ID}, s.ids...)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}

	taskToUpdate.UpdatedAt = time.Now()
	s.storage[taskToUpdate.ID] = taskToUpdate.Clone()
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

// GetAll возвращает задачи, новые в начале.
// Без фильтра удалённые задачи не попадают в выдачу.
func (s *TaskStorage) GetAll(ctx context.Context, status *task.Status) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		taskToGet := s.storage[id]

		if status != nil {
			if taskToGet.Status != *status {
				continue
			}
		} else if taskToGet.Status == task.StatusDeleted {
			continue
		}

		res = append(res, taskToGet.Clone())
	}
	return res, nil
}

func (s *TaskStorage) Query(ctx context.Context, opts repo.QueryOptions) ([]*task.Task, error) {
	tasks, err := s.GetAll(ctx, opts.Status)
	if err != nil {
		return nil, err
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = repo.SortByCreatedAt
	}
	desc := opts.SortOrder != repo.SortOrderAsc

	sort.SliceStable(tasks, func(i, j int) bool {
		less := lessByField(tasks[i], tasks[j], sortBy)
		if desc {
			return lessByField(tasks[j], tasks[i], sortBy)
		}
		return less
	})

	return tasks, nil
}

func lessByField(a, b *task.Task, field string) bool {
	switch field {
	case repo.SortByDueDate:
		// задачи без дедлайна идут в конец
		if a.DueDate == nil {
			return false
		}
		if b.DueDate == nil {
			return true
		}
		return a.DueDate.Before(*b.DueDate)
	case repo.SortByUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	case repo.SortByTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case repo.SortByStatus:
		return a.Status < b.Status
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// DeleteSoft помечает задачу удалённой, запись остаётся в хранилище
func (s *TaskStorage) DeleteSoft(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskExisted, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}

	// повторное удаление не сдвигает updated_at, иначе фоновая очистка
	// откладывалась бы на новый срок хранения
	if taskExisted.Status == task.StatusDeleted {
		return nil
	}

	taskExisted.Status = task.StatusDeleted
	taskExisted.UpdatedAt = time.Now()
	return nil
}

// DeleteFull окончательно убирает запись
func (s *TaskStorage) DeleteFull(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// GetDeletedBefore отдаёт удалённые задачи старше cutoff для фоновой очистки
func (s *TaskStorage) GetDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		if len(res) >= limit {
			break
		}

		t := s.storage[id]
		if t.Status == task.StatusDeleted && t.UpdatedAt.Before(cutoff) {
			res = append(res, t.Clone())
		}
	}
	return res, nil
}
