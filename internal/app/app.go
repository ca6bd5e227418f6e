package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskBoard/internal/config"
	"taskBoard/internal/handlers"
	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"
	"taskBoard/internal/repository/task/inmemory"
	"taskBoard/internal/repository/task/postgres"
	"taskBoard/internal/service"
	"taskBoard/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

const RepositoryPostgres = "postgres"
const RepositoryInMemory = "inmemory"

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	worker    *worker.PurgeWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	repo, err := a.initRepository(ctx)
	if err != nil {
		return err
	}

	taskService := service.NewTaskService(repo)
	taskHandler := handlers.NewTaskHandler(&taskService)

	if a.config.Worker.Enabled {
		a.worker = worker.NewPurgeWorker(
			repo,
			a.config.Worker.Interval,
			a.config.Worker.Retention,
			a.config.Worker.BatchSize,
		)
	}

	a.router = NewRouter(&taskHandler)
	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

func (a *App) initRepository(ctx context.Context) (service.TaskRepository, error) {
	switch a.config.Repository.Type {
	case RepositoryPostgres:
		if err := postgres.Migrate(a.config.Database.MigrationsURL, a.config.Database.URL); err != nil {
			return nil, fmt.Errorf("миграции: %w", err)
		}

		storage, err := postgres.New(ctx, a.config.Database.URL,
			a.config.Database.MaxConnections, a.config.Database.MinConnections)
		if err != nil {
			return nil, fmt.Errorf("создание репозитория postgres: %w", err)
		}

		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, nil
	case RepositoryInMemory:
		return inmemory.NewTaskStorage(), nil
	default:
		return nil, fmt.Errorf("неизвестный тип репозитория: %s", a.config.Repository.Type)
	}
}

// NewRouter собирает маршруты и middleware.
// Вынесено отдельно, чтобы тесты могли поднять роутер без сервера.
func NewRouter(taskHandler *handlers.TaskHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.GetTasks)  // GET /tasks
		r.Post("/", taskHandler.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", taskHandler.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}
		})
	})

	r.Get("/api/tasks/filter", taskHandler.FilterTasks) // GET /api/tasks/filter

	r.Get("/health", taskHandler.HealthCheck)

	return r
}

// Run запускает сервер и блокируется до отмены контекста
func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if a.worker != nil {
		go a.worker.Start(workerCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен: " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ошибка сервера: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	return nil
}
