package handlers

import (
	"context"
	"time"

	"taskBoard/internal/models/task"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, title string, dueDate *time.Time, comments *string) (*task.Task, error)
	GetTasks(ctx context.Context, status *task.Status) ([]*task.Task, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	QueryTasks(ctx context.Context, status *task.Status, sortBy, sortOrder string) ([]*task.Task, error)
}
