package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	rep "taskBoard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка бизнес-правил перед обращением к репозиторию

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) TaskService {
	return TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// CreateTask создаёт задачу со статусом Open.
// id и временные метки назначаются на стороне сервера, клиент их не передаёт.
func (s *TaskService) CreateTask(ctx context.Context, title string, dueDate *time.Time, comments *string) (*task.Task, error) {
	if err := task.ValidateTitle(title); err != nil {
		return nil, NewValidationError("title", err.Error())
	}

	comments = task.NormalizeComments(comments)
	if err := task.ValidateComments(comments); err != nil {
		return nil, NewValidationError("comments", err.Error())
	}

	newTask := &task.Task{
		ID:       uuid.New(),
		Title:    strings.TrimSpace(title),
		DueDate:  dueDate,
		Comments: comments,
		Status:   task.StatusOpen,
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.String("task_id", newTask.ID.String()))
	return newTask, nil
}

func (s *TaskService) GetTasks(ctx context.Context, status *task.Status) ([]*task.Task, error) {
	if status != nil && !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("недопустимый статус '%s'", *status))
	}

	tasks, err := s.repo.GetAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	foundTask, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return foundTask, nil
}

// UpdateTask применяет частичное обновление и возвращает итоговое состояние
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	for _, opt := range options {
		if opt != nil {
			opt(existing)
		}
	}

	if err := task.ValidateTitle(existing.Title); err != nil {
		return nil, NewValidationError("title", err.Error())
	}
	existing.Title = strings.TrimSpace(existing.Title)
	existing.Comments = task.NormalizeComments(existing.Comments)
	if err := task.ValidateComments(existing.Comments); err != nil {
		return nil, NewValidationError("comments", err.Error())
	}
	if !existing.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("недопустимый статус '%s'", existing.Status))
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(id.String())
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	logger.Info("Service: Задача обновлена", zap.String("task_id", id.String()))
	return existing, nil
}

// DeleteTask - мягкое удаление, запись остаётся со статусом Deleted
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSoft(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return NewNotFound(id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

// QueryTasks - выборка с фильтром и сортировкой для /api/tasks/filter
func (s *TaskService) QueryTasks(ctx context.Context, status *task.Status, sortBy, sortOrder string) ([]*task.Task, error) {
	if status != nil && !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("недопустимый статус '%s'", *status))
	}

	if sortBy == "" {
		sortBy = rep.SortByCreatedAt
	}
	if !rep.ValidSortBy(sortBy) {
		return nil, NewValidationError("sort_by", fmt.Sprintf("недопустимое поле сортировки '%s'", sortBy))
	}

	if sortOrder == "" {
		sortOrder = rep.SortOrderDesc
	}
	sortOrder = strings.ToLower(sortOrder)
	if !rep.ValidSortOrder(sortOrder) {
		return nil, NewValidationError("sort_order", fmt.Sprintf("недопустимое направление сортировки '%s'", sortOrder))
	}

	tasks, err := s.repo.Query(ctx, rep.QueryOptions{
		Status:    status,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("выборка задач: %w", err)
	}
	return tasks, nil
}
