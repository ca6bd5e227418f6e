package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQueryThreshold = time.Millisecond * 100

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, maxConns, minConns int32) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка разбора строки подключения", err)
		return nil, fmt.Errorf("разбор строки подключения: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = minConns
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

// Migrate применяет миграции из каталога sourceURL (file://...)
func Migrate(sourceURL, databaseURL string) error {
	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		logger.Error("Repository: Ошибка инициализации миграций", err)
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, title, due_date, comments, status)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.Title,
		taskToCreate.DueDate,
		taskToCreate.Comments,
		taskToCreate.Status,
	).Scan(&taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > slowQueryThreshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				due_date = $2,
				comments = $3,
				status = $4,
				updated_at = NOW()
			WHERE id = $5
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.DueDate,
		taskToUpdate.Comments,
		taskToUpdate.Status,
		taskToUpdate.ID,
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > slowQueryThreshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT id, title, due_date, comments, status, created_at, updated_at
				FROM tasks
				WHERE id = $1`

	t := &task.Task{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Title,
		&t.DueDate,
		&t.Comments,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if time.Since(start) > slowQueryThreshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

// GetAll возвращает задачи, новые в начале.
// Без фильтра удалённые задачи исключаются из выдачи.
func (s *Storage) GetAll(ctx context.Context, status *task.Status) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT id, title, due_date, comments, status, created_at, updated_at
				FROM tasks
				WHERE status != $1
				ORDER BY created_at DESC`
	args := []any{task.StatusDeleted}

	if status != nil {
		query = `SELECT id, title, due_date, comments, status, created_at, updated_at
				FROM tasks
				WHERE status = $1
				ORDER BY created_at DESC`
		args = []any{*status}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	if time.Since(start) > slowQueryThreshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

// Query - расширенная выборка с фильтром по статусу и сортировкой.
// Поля сортировки валидируются на уровне сервиса, но проверяем
// ещё раз перед подстановкой в текст запроса.
func (s *Storage) Query(ctx context.Context, opts repo.QueryOptions) ([]*task.Task, error) {
	start := time.Now()

	sortBy := opts.SortBy
	if !repo.ValidSortBy(sortBy) {
		sortBy = repo.SortByCreatedAt
	}
	sortOrder := "DESC"
	if opts.SortOrder == repo.SortOrderAsc {
		sortOrder = "ASC"
	}

	query := `SELECT id, title, due_date, comments, status, created_at, updated_at
				FROM tasks
				WHERE status != $1
				ORDER BY ` + sortBy + ` ` + sortOrder + ` NULLS LAST`
	args := []any{task.StatusDeleted}

	if opts.Status != nil {
		query = `SELECT id, title, due_date, comments, status, created_at, updated_at
				FROM tasks
				WHERE status = $1
				ORDER BY ` + sortBy + ` ` + sortOrder + ` NULLS LAST`
		args = []any{*opts.Status}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	if time.Since(start) > slowQueryThreshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

// DeleteSoft - мягкое удаление: статус Deleted, запись остаётся
func (s *Storage) DeleteSoft(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	// повторное удаление не сдвигает updated_at, иначе фоновая очистка
	// откладывалась бы на новый срок хранения
	query := `UPDATE tasks
				SET status = $1,
				updated_at = CASE WHEN status = $1 THEN updated_at ELSE NOW() END
			WHERE id = $2
			RETURNING updated_at`

	var updatedAt time.Time
	err := s.pool.QueryRow(ctx, query, task.StatusDeleted, id).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Мягкое удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("мягкое удаление: %w", err)
	}

	if time.Since(start) > slowQueryThreshold {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// DeleteFull - полное удаление из БД
func (s *Storage) DeleteFull(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks WHERE id = $1`

	_, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", err)
	}

	if time.Since(start) > slowQueryThreshold {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// GetDeletedBefore отдаёт удалённые задачи старше cutoff для фоновой очистки
func (s *Storage) GetDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT id, title, due_date, comments, status, created_at, updated_at
				FROM tasks
				WHERE status = $1 AND updated_at < $2
				ORDER BY updated_at ASC
				LIMIT $3`

	rows, err := s.pool.Query(ctx, query, task.StatusDeleted, cutoff, limit)
	if err != nil {
		logger.Error("Repository: Не удалось получить удалённые задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение удалённых задач: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]*task.Task, error) {
	tasks := []*task.Task{}
	for rows.Next() {
		t := &task.Task{}

		err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.DueDate,
			&t.Comments,
			&t.Status,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}
