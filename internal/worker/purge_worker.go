package worker

import (
	"context"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"taskBoard/internal/service"

	"go.uber.org/zap"
)

// PurgeWorker окончательно удаляет задачи, помеченные удалёнными
// дольше retention назад. Мягкое удаление остаётся обратимым
// только внутри окна retention.
type PurgeWorker struct {
	repo      service.TaskRepository
	interval  time.Duration
	retention time.Duration
	batchSize int
}

func NewPurgeWorker(repo service.TaskRepository, interval, retention time.Duration, batchSize int) *PurgeWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &PurgeWorker{
		repo:      repo,
		interval:  interval,
		retention: retention,
		batchSize: batchSize,
	}
}

func (w *PurgeWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая очистка удалённых задач", zap.Time("started_at", time.Now()))
			w.Purge(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая очистка останавливается")
			return
		}
	}
}

func (w *PurgeWorker) Purge(ctx context.Context) {
	start := time.Now()

	tasks, err := w.expiredDeleted(ctx)
	if err != nil {
		logger.Warn("Worker: Ошибка получения задач", zap.Error(err))
		return
	}

	purged := 0
	for _, t := range tasks {
		if err := w.repo.DeleteFull(ctx, t.ID); err != nil {
			logger.Warn("Worker: Ошибка удаления задачи",
				zap.String("task_id", t.ID.String()),
				zap.Error(err))
			continue
		}
		purged++
	}

	logger.Info(
		"Worker: Завершение очистки",
		zap.Duration("ms", time.Since(start)),
		zap.Int("found", len(tasks)),
		zap.Int("purged", purged),
	)
}

func (w *PurgeWorker) expiredDeleted(ctx context.Context) ([]*task.Task, error) {
	cutoff := time.Now().Add(-w.retention)

	tasks, err := w.repo.GetDeletedBefore(ctx, cutoff, w.batchSize)
	if err != nil {
		return nil, fmt.Errorf("получение удалённых задач: %w", err)
	}
	return tasks, nil
}
