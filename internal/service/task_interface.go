package service

import (
	"context"
	"time"

	"taskBoard/internal/models/task"
	"taskBoard/internal/repository"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	GetAll(context.Context, *task.Status) ([]*task.Task, error)
	Query(context.Context, repository.QueryOptions) ([]*task.Task, error)
	DeleteSoft(context.Context, uuid.UUID) error
	DeleteFull(context.Context, uuid.UUID) error
	GetDeletedBefore(context.Context, time.Time, int) ([]*task.Task, error)
	HealthCheck(context.Context) error
}
